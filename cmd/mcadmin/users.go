package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raushankrgupta/marketchoice-admin/auth"
	"github.com/raushankrgupta/marketchoice-admin/config"
	"github.com/raushankrgupta/marketchoice-admin/store"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var userName string

// hashPasswordCmd prints a bcrypt hash for ADMIN_PASSWORD_HASH.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Read a password from stdin and print its bcrypt hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(hash))
		return nil
	},
}

// createUserCmd adds an operator to the users collection used by AUTH_STRATEGY=mongo.
var createUserCmd = &cobra.Command{
	Use:   "create-user <username>",
	Short: "Create an operator account in MongoDB; the password is read from stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		ctx := context.Background()
		client, err := store.ConnectMongo(ctx, config.MongoURI)
		if err != nil {
			return err
		}
		defer client.Disconnect(ctx)

		users := auth.NewMongoAuthenticator(client.Database(config.MongoDatabase).Collection("users"))
		user, err := users.CreateUser(ctx, userName, args[0], password)
		if err != nil {
			return err
		}
		logger.WithField("email", user.Email).Info("operator created")
		fmt.Fprintln(cmd.OutOrStdout(), user.ID.Hex())
		return nil
	},
}

func readPassword(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return password, nil
}

func init() {
	createUserCmd.Flags().StringVarP(&userName, "name", "n", "", "display name")
}
