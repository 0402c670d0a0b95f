package cmd

import (
	"github.com/campus-hub/campus-services/db"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "init-db-migrate",
	Short: "Initialize tables and run database migrations",
	Long:  `This job ensures tables exist and then runs goose migrations.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Load the config and set up logging
		commonSetUp()

		logger := log.With().Str("component", "db").Logger()
		campusDB, err := db.NewCampusDB(appCfg.Database.Driver, appCfg.Database.Source, nil, &logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize CampusDB")
		}
		defer campusDB.Close()

		// Run the migrations
		log.Info().Msgf("Running migrations...")
		if err := campusDB.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}

		log.Info().Msg("Migrations complete")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
