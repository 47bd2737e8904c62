package main

import (
	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		defer config.Logger.Sync()

		db, err := config.OpenDB(conf)
		if err != nil {
			return err
		}
		if err := config.MigrateDB(db); err != nil {
			return err
		}
		config.Logger.Infow("schema up to date", "driver", conf.DBDriver)
		return nil
	},
}
