package zonealloc

// Config holds the knobs an Allocator may be constructed with. The zero
// Config reproduces the default zone sizing exactly (4/16 page zones).
// The overrides exist only for the CLI test harness (cmd/zonealloc-dump)
// to probe the allocator under tighter memory budgets, never for
// production tuning: the library itself never reads an environment
// variable.
type Config struct {
	// TinyZonePages overrides the TINY class zone size, in OS pages.
	// Zero means "use the default of 4 pages".
	TinyZonePages uintptr

	// SmallZonePages overrides the SMALL class zone size, in OS pages.
	// Zero means "use the default of 16 pages".
	SmallZonePages uintptr
}

// Option configures an Allocator at construction time.
type Option func(*Config)

// WithTinyZonePages overrides the TINY zone size, in OS pages.
func WithTinyZonePages(pages uintptr) Option {
	return func(c *Config) { c.TinyZonePages = pages }
}

// WithSmallZonePages overrides the SMALL zone size, in OS pages.
func WithSmallZonePages(pages uintptr) Option {
	return func(c *Config) { c.SmallZonePages = pages }
}
