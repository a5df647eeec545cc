package version

// Version is the current version of cdcgen.
// Can be overridden at build time with -ldflags "-X ...version.Version=..."
var Version = "1.4.0"

// Name is the application name.
const Name = "cdcgen"

// Description is a short description of the application.
const Description = "CDC replication migration artifact generator for PostgreSQL"
