package models

const (
	TypeStandard = "standard"
	TypeBirthday = "birthday"
)

// Rođendanski meni — фиксированные тарифы, цена за ребенка в динарах
const (
	BirthdayMenuBasic   = "1700"
	BirthdayMenuPremium = "2200"
)

const (
	// MinNameLength минимальная длина имени гостя после trim
	MinNameLength = 2

	// MinPhoneLength минимальная длина телефона после trim
	MinPhoneLength = 6

	// MinGuests / MaxGuests допустимое количество гостей
	MinGuests = 1
	MaxGuests = 50

	// MinTableNumber / MaxTableNumber допустимые номера столов
	MinTableNumber = 1
	MaxTableNumber = 100
)

const (
	// DateLayout каноническая форма даты (YYYY-MM-DD)
	DateLayout = "2006-01-02"

	// TimeLayout каноническая форма времени (HH:MM, 24 часа)
	TimeLayout = "15:04"

	// DisplayDateLayout формат только для отображения, никогда не сохраняется
	DisplayDateLayout = "02.01.2006"
)

const (
	// StorageKey ключ, под которым Redis-вариант хранит всю коллекцию
	StorageKey = "restaurant_reservations"

	// DefaultCreatedBy значение createdBy, если сотрудник не указан
	DefaultCreatedBy = "Konobar"
)

const (
	// BackupVersion текущая версия формата backup-документа
	BackupVersion = "1.0"

	// BackupVersionLegacy версия для старого формата (bare list)
	BackupVersionLegacy = "legacy"
)

const (
	// SyncQueueSize размер очереди задач синхронизации с Google Sheets
	SyncQueueSize = 64

	// ReminderHour час отправки ежедневной сводки по умолчанию
	ReminderHour = 9
)
