package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client when schedules are fetched from the portal.
var UserAgent = "Go-IVU-ICS/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go IVU ICS"
	AppID             = "com.github.tartampluch.go-ivu-ics"
	KeyringService    = "com.github.tartampluch.go-ivu-ics"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	TempFilePattern   = ".go-ivu-ics-*.tmp"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs.
	FilePermUserRW fs.FileMode = 0600

	// FilePermCalendar represents -rw-r--r--. Calendars are meant to be imported elsewhere.
	FilePermCalendar fs.FileMode = 0644

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion = "version"
	FlagDebug   = "debug"
	FlagMonth   = "m"
	FlagConfig  = "config"
	FlagLang    = "lang"
	FlagUser    = "user"
	FlagServe   = "serve"
	FlagSavePw  = "save-password"

	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging"
	FlagDescMonth   = "Only keep events beginning in this month (YYYY-MM), bounded at midnight in the schedule timezone"
	FlagDescConfig  = "Path to an optional YAML settings file"
	FlagDescLang    = "Language of operator messages (en, sv)"
	FlagDescUser    = "Portal user for HTTP inputs (password read from the OS keyring)"
	FlagDescServe   = "After writing, also serve the calendar on this localhost port"
	FlagDescSavePw  = "Read a password from stdin and store it in the OS keyring for -user, then exit"

	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultTimezone = "Europe/Stockholm"
	DefaultLanguage = "en"
	DefaultCalName  = "IVU"
	UIDNamespace    = "https://github.com/tartampluch/go-ivu-ics/events/v1" // Name-based UUID namespace for event UIDs
)

// SupportedLanguages defines the list of available operator message languages (ISO 639-1).
var SupportedLanguages = []string{"en", "sv"}

// -----------------------------------------------------------------------------
// IVU Schedule Markup
// -----------------------------------------------------------------------------

const (
	// CSS selectors for the day blocks of an IVU schedule page.
	SelectorDay       = ".day"
	SelectorAllocDay  = ".allocation-day"
	SelectorTitle     = ".title-text"
	SelectorTimeBegin = ".time.begin"
	SelectorTimeEnd   = ".time.end"
	AttrDate          = "data-date"

	// OvernightMarker is appended to end times of shifts that cross midnight.
	OvernightMarker = "+"
	// MidnightLiteral also marks a shift ending on the following day.
	MidnightLiteral = "00:00"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go IVU ICS//Engine//EN"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "goivuics"

	// iCal Fields
	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTEnd      = "DTEND"
	PropDTStamp    = "DTSTAMP"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropXWRTZ      = "X-WR-TIMEZONE"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Layouts of the raw values found in schedule pages.
	DateFormatDay  = "2006-01-02"
	TimeFormatHHMM = "15:04"

	// Layouts accepted for the month filter.
	MonthFormatYM  = "2006-01"
	MonthFormatYMD = "2006-01-02"
	MonthFormatY   = "2006"
	MonthFormatRFC = time.RFC3339

	// UID Generation
	FormatUID = "%s@%s"

	// File Extensions
	ExtICS = ".ics"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 32 * 1024 * 1024 // 32MB, schedule pages are small
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAccept          = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	MimeHTML            = "text/html, application/xhtml+xml"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrUsage          = "usage error"
	ErrTooFewArgs     = "too few arguments"
	ErrMonthMissing   = "missing month after -m"
	ErrOutputExt      = "output must end in \".ics\""
	ErrMonthParse     = "unable to parse month"
	ErrInputEmpty     = "input path is empty"
	ErrFetcherMissing = "internal error: network fetcher is not initialized"
	ErrInputRead      = "failed to read schedule document"
	ErrHTMLParse      = "failed to parse schedule document"
	ErrTimezone       = "unknown timezone"
	ErrTimezoneLocal  = "\"Local\" is ambiguous, use an IANA name"
	ErrServerStartup  = "server startup failed"
	ErrServerShutdown = "server shutdown failed"
	ErrPortRequired   = "server port is required"
	ErrInvalidURL     = "invalid URL structure"
	ErrProtocol       = "unsupported protocol scheme (http/https only)"
	ErrRequestBuild   = "failed to create request"
	ErrNetwork        = "network error during fetch"
	ErrHTTPStatus     = "portal returned unexpected status"
	ErrPortalAuth     = "portal rejected the credentials (store them with -save-password)"
	ErrTooLarge       = "schedule document exceeds size limit"
	ErrICalEncode     = "failed to encode iCalendar data"
	ErrWriteOutput    = "failed to write calendar file"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrCreateDir      = "could not create app cache dir"
	ErrAppFailed      = "application failed unexpectedly"
	ErrWriteResp      = "failed to write response body"
	ErrSettingsLoad   = "failed to load settings file"
	ErrUserRequired   = "-user is required"
	ErrPasswordStore  = "failed to store password"
	ErrKeyringUser    = "keyring user is empty"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	// StubVCalendar is the minimal valid iCalendar object used when no events remain.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgConvertStarted = "Conversion started"
	MsgConvertDone    = "Conversion finished"
	MsgDocParsed      = "Schedule document parsed"
	MsgSkippedCell    = "Skipping day cell"
	MsgEventFiltered  = "Events filtered by month"
	MsgGenSuccess     = "Calendar generation successful"
	MsgFileWritten    = "Calendar file written"
	MsgAppStop        = "Application stopped gracefully"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgFetchStart     = "Requesting schedule page"
	MsgFetchStatus    = "Portal returned error status"
	MsgFetchOK        = "Schedule page received"
	MsgPassStored     = "Password stored in keyring"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgSettingsLoaded = "Settings file loaded"
	MsgTransMissing   = "Missing translation key"

	// Reasons attached to MsgSkippedCell.
	SkipNoDate      = "no date attribute"
	SkipNoTitle     = "no title text"
	SkipBadDate     = "unparsable date"
	SkipNoEnd       = "begin time without end time"
	SkipBadTime     = "unparsable time"
	SkipEndNotAfter = "end not after begin"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyEventsWritten = "events_written" // Requires Count, Path
	TKeyUsage         = "usage"          // Requires Prog
	TKeyOutputExt     = "err_output_ext" // Requires Usage
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyUser      = "user"
	LogKeyAuth      = "auth"
	LogKeyInputs    = "inputs"
	LogKeyMonth     = "month"
	LogKeyDate      = "date"
	LogKeyTitle     = "title"
	LogKeyReason    = "reason"
	LogKeyCells     = "day_cells"
	LogKeyEvents    = "events"
	LogKeyKept      = "kept"
	LogKeyDropped   = "dropped"
	LogKeyTimezone  = "timezone"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"
	LogKeyStats     = "stats"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain     = "main"
	CompEngine   = "engine"
	CompSchedule = "schedule"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompKeyring  = "keyring"
	CompI18n     = "i18n"
	CompSettings = "settings"
)
