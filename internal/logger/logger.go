package logger

// Backend receives every log call. Key/value pairs follow the message.
type Backend interface {
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
}

type dispatcher struct {
	backends []Backend
}

var current *dispatcher

// Init installs the backends used by the package-level functions. Calls made
// before Init are dropped.
func Init(backends ...Backend) {
	current = &dispatcher{backends: backends}
}

func Debug(message string, keyvals ...any) {
	if current == nil {
		return
	}
	for _, b := range current.backends {
		b.Debug(message, keyvals...)
	}
}

func Info(message string, keyvals ...any) {
	if current == nil {
		return
	}
	for _, b := range current.backends {
		b.Info(message, keyvals...)
	}
}

func Warn(message string, keyvals ...any) {
	if current == nil {
		return
	}
	for _, b := range current.backends {
		b.Warn(message, keyvals...)
	}
}

func Error(message string, keyvals ...any) {
	if current == nil {
		return
	}
	for _, b := range current.backends {
		b.Error(message, keyvals...)
	}
}
