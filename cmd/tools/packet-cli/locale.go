package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/annel0/mmo-wire/internal/localization"
)

func localeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locale",
		Short: "Manage shared NPC name/title catalogs",
	}
	cmd.AddCommand(localePushCmd(a))
	return cmd
}

func localePushCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "push <catalog.yaml>...",
		Short: "Upload <lang>.yaml catalogs to Redis and notify running relays",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := localization.NewStore()
			catalogs, closeCatalogs, err := openCatalogSync(a.cfg, store)
			if err != nil {
				return err
			}
			if catalogs == nil {
				return fmt.Errorf("cache.redis_addr is not set")
			}
			defer closeCatalogs()

			for _, path := range args {
				lang := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				c, err := localization.ReadCatalog(path)
				if err != nil {
					return err
				}
				if err := catalogs.Publish(cmd.Context(), lang, c); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d translations\n", lang, c.Len())
			}
			return nil
		},
	}
}
