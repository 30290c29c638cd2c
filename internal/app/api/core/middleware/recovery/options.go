package recovery

// options contains the settings of the recovery middleware (functional options pattern).
type options struct {
	exposeStackTrace bool
	logPrefix        string
}

// Option sets an option of the recovery middleware.
type Option func(*options)

// WithExposeStackTrace adds the stack trace of the panic to the details field of the error response.
// Disabled by default.
func WithExposeStackTrace(expose bool) Option {
	return func(o *options) {
		o.exposeStackTrace = expose
	}
}

// WithLogPrefix prepends the given prefix (and a space) to every log message.
func WithLogPrefix(prefix string) Option {
	return func(o *options) {
		o.logPrefix = prefix
	}
}

func newOptions(opts ...Option) options {
	o := options{}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
