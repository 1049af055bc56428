package consts

// Permissions for files and directories fetcharr creates.
const (
	PermsHomeProgDir = 0o755
	PermsGenericDir  = 0o755
	PermsTempDir     = 0o700

	PermsCookieFile = 0o600 // Private cookie files
)
