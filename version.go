package explorer

// Version is the release of the module, overridden at build time with
// -ldflags "-X github.com/EricFan2002/GTOJsonExplorer.Version=...".
var Version = "0.3.0"
