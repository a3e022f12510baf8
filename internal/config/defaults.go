package config

const (
	defaultDataDir              = "~/.local/share/tubio"
	defaultLogDir               = "~/.local/share/tubio/logs"
	defaultBind                 = "127.0.0.1:7000"
	defaultReadTimeoutSeconds   = 15
	defaultWriteTimeoutSeconds  = 120
	defaultYTDLPBinary          = "yt-dlp"
	defaultYTDLPExtractors      = "all"
	defaultYTDLPTimeoutSeconds  = 120
	defaultSponsorBlockBaseURL  = "https://sponsor.ajay.app"
	defaultDeArrowBaseURL       = "https://sponsor.ajay.app"
	defaultDeArrowThumbBaseURL  = "https://dearrow-thumb.ajay.app"
	defaultServiceTimeout       = 10
	defaultSessionExpiryDays    = 30
	defaultSweepIntervalSeconds = 3600
	defaultPBKDF2Iterations     = 10000
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			Bind:    defaultBind,
		},
		Server: Server{
			ReadTimeoutSeconds:  defaultReadTimeoutSeconds,
			WriteTimeoutSeconds: defaultWriteTimeoutSeconds,
		},
		YTDLP: YTDLP{
			Binary:         defaultYTDLPBinary,
			Extractors:     defaultYTDLPExtractors,
			TimeoutSeconds: defaultYTDLPTimeoutSeconds,
		},
		SponsorBlock: SponsorBlock{
			BaseURL:        defaultSponsorBlockBaseURL,
			RequestTimeout: defaultServiceTimeout,
		},
		DeArrow: DeArrow{
			BaseURL:          defaultDeArrowBaseURL,
			ThumbnailBaseURL: defaultDeArrowThumbBaseURL,
			RequestTimeout:   defaultServiceTimeout,
		},
		Sessions: Sessions{
			ExpiryDays:           defaultSessionExpiryDays,
			SweepIntervalSeconds: defaultSweepIntervalSeconds,
			PBKDF2Iterations:     defaultPBKDF2Iterations,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
