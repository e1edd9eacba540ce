package config

const (
	defaultDataDir    = "~/.local/share/vidscribe"
	defaultLogDir     = "~/.local/share/vidscribe/logs"
	defaultScratchDir = "~/.local/share/vidscribe/scratch"

	defaultLocatorBaseURL        = "https://www.douyin.com"
	defaultLocatorCookieFile     = "~/.config/vidscribe/cookies/douyin.txt"
	defaultLocatorRequestTimeout = 30

	defaultMaxFetchMiB         = 64
	defaultFetchMinBytes       = 10 * 1024
	defaultFetchTimeoutSeconds = 120

	defaultFileTransBaseURL      = "https://filetrans.cn-shanghai.aliyuncs.com"
	defaultFileTransPollInterval = 2
	defaultFileTransMaxWait      = 60
	defaultFileTransPricePerHour = 2.5
	defaultFileTransMaxInputMiB  = 512

	defaultOmniBaseURL          = "https://dashscope.aliyuncs.com"
	defaultOmniModel            = "qwen-omni-turbo"
	defaultOmniTimeoutSeconds   = 120
	defaultOmniInputTokenPrice  = 0.003
	defaultOmniOutputTokenPrice = 0.006
	defaultOmniMaxInputMiB      = 10

	defaultWhisperModel  = "base"
	defaultWhisperBinary = "whisper"
	defaultFFmpegBinary  = "ffmpeg"

	defaultPerProviderTimeoutSeconds  = 120
	defaultResolutionTimeoutSeconds   = 600
	defaultTimeoutRetryBackoffSeconds = 2
	defaultLanguage                   = "zh"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			ScratchDir: defaultScratchDir,
		},
		Locator: Locator{
			BaseURL:        defaultLocatorBaseURL,
			CookieFile:     defaultLocatorCookieFile,
			RequestTimeout: defaultLocatorRequestTimeout,
		},
		Fetcher: Fetcher{
			MaxFetchMiB:    defaultMaxFetchMiB,
			MinBytes:       defaultFetchMinBytes,
			TimeoutSeconds: defaultFetchTimeoutSeconds,
		},
		Providers: Providers{
			FileTrans: FileTrans{
				BaseURL:             defaultFileTransBaseURL,
				PollIntervalSeconds: defaultFileTransPollInterval,
				MaxWaitSeconds:      defaultFileTransMaxWait,
				PricePerHour:        defaultFileTransPricePerHour,
				MaxInputMiB:         defaultFileTransMaxInputMiB,
			},
			Omni: Omni{
				BaseURL:          defaultOmniBaseURL,
				Model:            defaultOmniModel,
				TimeoutSeconds:   defaultOmniTimeoutSeconds,
				InputTokenPrice:  defaultOmniInputTokenPrice,
				OutputTokenPrice: defaultOmniOutputTokenPrice,
				MaxInputMiB:      defaultOmniMaxInputMiB,
			},
			Whisper: Whisper{
				Enabled:       true,
				Model:         defaultWhisperModel,
				WhisperBinary: defaultWhisperBinary,
				FFmpegBinary:  defaultFFmpegBinary,
			},
		},
		Resolver: Resolver{
			ProviderOrder:              []string{"filetrans", "omni", "whisper"},
			PerProviderTimeoutSeconds:  defaultPerProviderTimeoutSeconds,
			ResolutionTimeoutSeconds:   defaultResolutionTimeoutSeconds,
			TimeoutRetryBackoffSeconds: defaultTimeoutRetryBackoffSeconds,
			Language:                   defaultLanguage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
