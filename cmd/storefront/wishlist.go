package main

import (
	"errors"
	"fmt"

	"github.com/dejobratic/storefront/internal/catalog/adapters/httpclient"
	"github.com/spf13/cobra"
)

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Add or remove wishlist products",
}

var wishlistAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleWishlist(cmd, args[0], false)
	},
}

var wishlistRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleWishlist(cmd, args[0], true)
	},
}

func init() {
	wishlistCmd.AddCommand(wishlistAddCmd, wishlistRemoveCmd)
}

func toggleWishlist(cmd *cobra.Command, productID string, inWishlist bool) error {
	if userID == "" {
		return errors.New("--user is required for wishlist changes")
	}

	client, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	result, err := httpclient.NewWishlistClient(client).Toggle(cmd.Context(), productID, inWishlist)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", result.Status, result.Message)
	return nil
}
