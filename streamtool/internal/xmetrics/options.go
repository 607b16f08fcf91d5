package xmetrics

type config struct {
	processCollectors bool
}

type Option func(*config)

func WithProcessCollectors() Option {
	return func(c *config) {
		c.processCollectors = true
	}
}

func collectOptions(options ...Option) *config {
	conf := &config{}
	for _, opt := range options {
		opt(conf)
	}
	return conf
}
