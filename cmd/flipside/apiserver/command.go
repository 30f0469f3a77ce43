package apiserver

import (
	"github.com/spf13/cobra"

	"github.com/flipsidefm/flipside/internal/business"
	"github.com/flipsidefm/flipside/internal/cmdutils"
)

func Cmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"api-server",
		"FlipSide Player API server",
		"Hosts the public HTTP API: login, session, search, playback, and favorites.",
		business.Main,
	)
}
