package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"property-hierarchy/internal/config"
	"property-hierarchy/internal/hierarchy"
	"property-hierarchy/internal/registry"
	"property-hierarchy/internal/storage/block"
	"property-hierarchy/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "hierarchy-admin",
	Short: "Property Hierarchy Administration CLI",
	Long:  `A command-line interface for managing users and inspecting the property hierarchy.`,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service status",
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, nodeStore, err := openStore()
		if err != nil {
			return err
		}

		counts := make(map[hierarchy.NodeType]int)
		for _, n := range nodeStore.All() {
			counts[n.Type]++
		}

		fmt.Println("Property Hierarchy Status:")
		for _, t := range hierarchy.AllTypes {
			fmt.Printf("  %-14s %d\n", string(t)+":", counts[t])
		}
		if err := storage.Health(context.Background()); err != nil {
			fmt.Printf("  Snapshot storage: unhealthy (%v)\n", err)
		} else {
			fmt.Println("  Snapshot storage: healthy")
		}
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the hierarchy tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, nodeStore, err := openStore()
		if err != nil {
			return err
		}

		roots := nodeStore.Children("")
		if len(roots) == 0 {
			fmt.Println("(empty)")
			return nil
		}
		for _, root := range roots {
			printSubtree(nodeStore, root)
		}
		return nil
	},
}

func printSubtree(s *store.MemoryStore, n *hierarchy.Node) {
	indent := strings.Repeat("  ", n.Height)
	fmt.Printf("%s- [%s] %s (%s)\n", indent, n.Type, n.Name, n.ID)
	for _, child := range s.Children(n.ID) {
		printSubtree(s, child)
	}
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management",
}

var (
	userName     string
	userEmail    string
	userPassword string
	userIsAdmin  bool
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		users := registry.NewUserRegistry(cfg.Users.DataFile, cfg.Auth.BcryptCost)
		if err := users.Load(); err != nil {
			return err
		}

		user, err := users.Register(userName, userEmail, userPassword, userIsAdmin)
		if err != nil {
			return err
		}
		fmt.Printf("created user %s (%s, admin=%t)\n", user.ID, user.Email, user.IsAdmin)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		users := registry.NewUserRegistry(cfg.Users.DataFile, cfg.Auth.BcryptCost)
		if err := users.Load(); err != nil {
			return err
		}

		for _, u := range users.All() {
			fmt.Printf("%s  %-30s admin=%t\n", u.ID, u.Email, u.IsAdmin)
		}
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Snapshot operations",
}

var snapshotBackupCmd = &cobra.Command{
	Use:   "backup <dest-path>",
	Short: "Copy the current snapshot to a backup path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, err := openStorage()
		if err != nil {
			return err
		}
		if err := storage.Copy(context.Background(), cfg.Snapshot.Path, args[0]); err != nil {
			return err
		}
		fmt.Printf("backed up %s to %s\n", cfg.Snapshot.Path, args[0])
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <src-path>",
	Short: "Restore the snapshot from a backup path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, err := openStorage()
		if err != nil {
			return err
		}
		if err := storage.Copy(context.Background(), args[0], cfg.Snapshot.Path); err != nil {
			return err
		}
		fmt.Printf("restored %s from %s\n", cfg.Snapshot.Path, args[0])
		return nil
	},
}

func openStorage() (block.Storage, error) {
	return block.NewFactory().Create(block.Config{
		Type:    cfg.Snapshot.Backend,
		BaseDir: cfg.Snapshot.BaseDir,
		Options: map[string]string{
			"bucket": cfg.Snapshot.Bucket,
			"region": cfg.Snapshot.Region,
			"prefix": cfg.Snapshot.Prefix,
		},
	})
}

func openStore() (block.Storage, *store.MemoryStore, error) {
	storage, err := openStorage()
	if err != nil {
		return nil, nil, err
	}
	nodeStore := store.NewMemoryStore(store.NewJSONSnapshots(storage, cfg.Snapshot.Path))
	if err := nodeStore.Load(context.Background()); err != nil {
		return nil, nil, err
	}
	return storage, nodeStore, nil
}

func init() {
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "password")
	userCreateCmd.Flags().BoolVar(&userIsAdmin, "admin", false, "grant admin role")
	userCreateCmd.MarkFlagRequired("name")
	userCreateCmd.MarkFlagRequired("email")
	userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(userCmd)

	snapshotCmd.AddCommand(snapshotBackupCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
	rootCmd.AddCommand(snapshotCmd)

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(treeCmd)
}

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("could not load configuration: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
