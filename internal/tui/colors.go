package tui

// Color constants for the taskdeck TUI theme
const (
	// Base Colors
	ColorAppBackground  = ""        // Use terminal default background
	ColorCardBackground = "#10231F" // Dark teal
	ColorBorder         = "#3A5550" // Grey-green

	// Text Colors
	ColorPrimaryText   = "#E6F2EE" // Primary text (field labels, user input, titles)
	ColorSecondaryText = "#ADC7C0" // Secondary text
	ColorDisabledText  = "#6D8380" // Disabled/muted text
	ColorPlaceholder   = "#ADC7C0" // Same as secondary
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors (Teal theme)
	ColorAccentMain   = "#14B8A6" // Logo, accent elements, active borders
	ColorAccentBright = "#5EEAD4" // Hover, highlights, selection

	// State Colors
	ColorError   = "#EF4444" // Validation errors
	ColorSuccess = "#22C55E" // Success, confirmations
	ColorWarning = "#F59E0B" // Warnings

	// Status Colors
	ColorStatusTodo       = "#60A5FA"
	ColorStatusInProgress = "#F59E0B"
	ColorStatusCompleted  = "#22C55E"
)
