package cfg

type Cfg struct {
	// Bluesky credentials and host
	BskyIdentifier string
	BskyPassword   string
	PDSHost        string

	// Cursor store configuration
	FeedsTable string

	// Application configuration
	FetchTimeout int
	RunInterval  int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
