package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	Port          string
	AliasesDir    string
	APIAccessKey  string
	MaxUploadSize int64

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
