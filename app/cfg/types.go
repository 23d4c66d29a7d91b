package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	Port         string
	PollInterval int
	FetchTimeout int
	FetchRPS     float64
	FetchBurst   int
	SourcesFile  string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
