package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"modelmove/logger"
	"modelmove/server"
	"modelmove/server/migrations/description"
	"modelmove/server/migrations/migrations"
	"modelmove/server/migrations/move"
	"modelmove/server/migrations/neutered"
	"modelmove/server/migrations/operations"
	"modelmove/server/pg"
	"modelmove/server/state"
	"modelmove/server/transactions"
)

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List the operation kinds migration files may use",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tNEUTERABLE\tDESCRIPTION")
		for _, kind := range append(operations.Catalog(), move.Kinds()...) {
			neuterable := "-"
			if _, ok := neutered.Lookup(kind.Name); ok && kind.Namespace == "" {
				neuterable = neutered.Namespace + "." + kind.Name
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", kind.QualifiedName(), neuterable, kind.Doc)
		}
		w.Flush()
	},
}

var sqlmigrateCmd = &cobra.Command{
	Use:   "sqlmigrate FILE [FILE...]",
	Short: "Print the DDL of the last migration file",
	Long: `Prints the statements the last migration file would run. Preceding files, when given,
are replayed from an empty state to get the schema the migration starts from; otherwise the
stored state is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backwards, _ := cmd.Flags().GetBool("backwards")
		history, migration, err := loadMigrations(args)
		if err != nil {
			return err
		}
		before, err := startingState(cmd.Context(), history)
		if err != nil {
			return err
		}

		collector := pg.NewCollector()
		if backwards {
			_, err = migration.Unapply(before, collector)
		} else {
			_, err = migration.Apply(before, collector)
		}
		if err != nil {
			return err
		}
		for _, statement := range collector.Statements() {
			fmt.Fprintln(cmd.OutOrStdout(), statement.Code)
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate FILE [FILE...]",
	Short: "Apply migration files in order, or unapply the last one",
	Long: `Applies every file in order inside a single transaction and saves the resulting state.
With --backwards only the last file is unapplied; the preceding files describe its history.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backwards, _ := cmd.Flags().GetBool("backwards")
		history, migration, err := loadMigrations(args)
		if err != nil {
			return err
		}
		syncer, err := state.NewSyncer(appConfig)
		if err != nil {
			return err
		}
		db, err := pg.Open(appConfig.DbDriver, appConfig.DbConnectionOptions)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		transactionManager := transactions.NewGlobalTransactionManager(syncer, transactions.NewPgDbTransactionManager(db))
		transaction, err := transactionManager.BeginTransaction(ctx)
		if err != nil {
			return err
		}

		executor := migrations.NewExecutor(transaction.StateTransaction.Syncer(), transaction.Editor())
		if backwards {
			_, err = executor.Unapply(ctx, history, migration)
		} else {
			for _, m := range append(history, migration) {
				if _, err = executor.Apply(ctx, m); err != nil {
					break
				}
			}
		}
		if err != nil {
			if rollbackErr := transactionManager.RollbackTransaction(transaction); rollbackErr != nil {
				logger.Error("Rollback failed: %s", rollbackErr.Error())
			}
			return err
		}
		return transactionManager.CommitTransaction(ctx, transaction)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("address")
		port, _ := cmd.Flags().GetString("port")
		root, _ := cmd.Flags().GetString("root")
		if root == "" {
			root = appConfig.UrlPrefix
		}
		syncer, err := state.NewSyncer(appConfig)
		if err != nil {
			return err
		}
		return server.New(addr, port, strings.TrimRight(root, "/"), syncer).Setup(appConfig).ListenAndServe()
	},
}

func init() {
	sqlmigrateCmd.Flags().Bool("backwards", false, "print the DDL that unapplies the migration")
	migrateCmd.Flags().Bool("backwards", false, "unapply the last migration file")
	serveCmd.Flags().StringP("address", "a", "", "address to listen on")
	serveCmd.Flags().StringP("port", "p", "8000", "port to listen on")
	serveCmd.Flags().StringP("root", "r", "", "URL path prefix, URL_PREFIX by default")

	rootCmd.AddCommand(operationsCmd, sqlmigrateCmd, migrateCmd, serveCmd)
}

//Reads and builds the files; the last one is the target, the others its history.
func loadMigrations(paths []string) ([]*migrations.Migration, *migrations.Migration, error) {
	factory := migrations.NewMigrationFactory(nil)
	loaded := make([]*migrations.Migration, 0, len(paths))
	for _, path := range paths {
		migrationDescription, err := description.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		migration, err := factory.Factory(migrationDescription)
		if err != nil {
			return nil, nil, err
		}
		loaded = append(loaded, migration)
	}
	return loaded[:len(loaded)-1], loaded[len(loaded)-1], nil
}

func startingState(ctx context.Context, history []*migrations.Migration) (*state.ProjectState, error) {
	if len(history) > 0 {
		return migrations.Replay(history)
	}
	syncer, err := state.NewSyncer(appConfig)
	if err != nil {
		return nil, err
	}
	return syncer.Get(ctx)
}
