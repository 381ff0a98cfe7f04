package models

// Table описывает стол из плана зала (configs/tables.yaml).
// План используется только для отображения: валидация номера стола
// остается в пределах 1-100 независимо от плана.
type Table struct {
	Number int    `yaml:"number" json:"number"`
	Seats  int    `yaml:"seats" json:"seats"`
	Zone   string `yaml:"zone" json:"zone"`
}
