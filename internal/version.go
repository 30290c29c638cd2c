package internal

// Version is overwritten at build time using ldflags.
var Version = "dev"
