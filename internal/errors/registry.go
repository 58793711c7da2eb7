package errors

// template holds the registered defaults for an error code.
type template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]template{
	// Configuration errors (E100-E109)
	"E100": {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Detail:     "No parley.json was found in the working directory.",
		Suggestion: "Create parley.json or pass --config with an explicit path.",
	},
	"E101": {
		Category:   CategoryConfig,
		Message:    "Config file invalid",
		Detail:     "parley.json could not be parsed.",
		Suggestion: "Check that parley.json is valid JSON.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
	},

	// Auth errors (E110-E119)
	"E110": {
		Category:   CategoryAuth,
		Message:    "Login failed",
		Detail:     "The server rejected the supplied credentials.",
		Suggestion: "Check the username and password.",
	},
	"E111": {
		Category:   CategoryAuth,
		Message:    "Session expired",
		Detail:     "The access token could not be renewed.",
		Suggestion: "Log in again.",
	},

	// Connection errors (E120-E129)
	"E120": {
		Category:   CategoryConnection,
		Message:    "Cannot reach server",
		Detail:     "The WebSocket dial failed.",
		Suggestion: "Check the server URL and that the server is running.",
	},
	"E121": {
		Category: CategoryConnection,
		Message:  "Connection lost",
		Detail:   "The session ended after repeated transport failures.",
	},
	"E122": {
		Category: CategoryConnection,
		Message:  "Session closed by server",
	},

	// Media errors (E130-E139)
	"E130": {
		Category:   CategoryMedia,
		Message:    "Unsupported media type",
		Suggestion: "Only image files (png, jpeg, gif, webp) can be attached.",
	},
	"E131": {
		Category: CategoryMedia,
		Message:  "File too large",
	},

	// CLI errors (E140-E149)
	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid command arguments",
	},
}
