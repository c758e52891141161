package app

// Version is the application version, overridable at build time via
// -ldflags "-X github.com/leobook/canondict/internal/app.Version=...".
var Version = "dev"
