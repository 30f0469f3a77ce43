package migrate

import (
	"github.com/spf13/cobra"

	"github.com/flipsidefm/flipside/internal/business"
	"github.com/flipsidefm/flipside/internal/cmdutils"
)

func Cmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"migrate",
		"Apply database migrations",
		"Applies the embedded goose migrations to the configured database.",
		business.MigrateMain,
	)
}
