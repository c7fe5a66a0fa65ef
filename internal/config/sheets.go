package config

type GoogleSheetsConfig struct {
	Spreadsheet string `yaml:"spreadsheet-id"`
	Credentials string `yaml:"credentials-file"`
}

func (s *GoogleSheetsConfig) SpreadsheetID() string {
	return s.Spreadsheet
}

func (s *GoogleSheetsConfig) CredentialsFile() string {
	return s.Credentials
}

func (s *GoogleSheetsConfig) Enabled() bool {
	return s.Spreadsheet != ""
}
