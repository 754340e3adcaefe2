package assets

import (
	_ "embed"
)

// --- Embeds ---

//go:embed gamecontrollerdb.txt
var GameControllerDB string

//go:embed padmap.ini
var DefaultPadMapIni []byte
