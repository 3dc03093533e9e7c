package constants

const (
	Version        = `0.1.0`
	AppName        = `nervous`
	ConfigFile     = `cfg`
	ConfigFileType = `yaml`
	ConfigDir      = `/.nervous/`
	LogFile        = `nervous.log`
	EnvPrefix      = `NERVOUS`

	DefaultTitle   = `Untitled`
	MarkdownExt    = `.md`
	UntitledFile   = `untitled.md`
	ExportTempName = `nervous-export`
)
