package main

import (
	"fmt"

	"psyjaciele/internal/client"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string

	registerUsername string
	registerEmail    string
	registerPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Inicia sesión y guarda el token localmente",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := cli.api.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}
		return startSession(cmd, sess)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Crea una cuenta e inicia sesión",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := cli.api.Register(cmd.Context(), registerUsername, registerEmail, registerPassword)
		if err != nil {
			return err
		}
		return startSession(cmd, sess)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Cierra la sesión local",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.kv.Delete(cmd.Context(), tokenKey); err != nil {
			return fmt.Errorf("forget session: %w", err)
		}
		cli.cache.SetToken(cmd.Context(), "")
		fmt.Println("logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Muestra el usuario de la sesión actual",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cli.cache.Authenticated() {
			fmt.Println("anonymous")
			return nil
		}
		u, err := cli.api.Profile(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> role=%s\n", u.Username, u.Email, u.Role)
		return nil
	},
}

// startSession guarda el token y recarga la lista con la nueva sesión.
// Lo creado localmente antes del login no se sube.
func startSession(cmd *cobra.Command, sess client.Session) error {
	if err := cli.kv.Set(cmd.Context(), tokenKey, []byte(sess.Token)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	src := cli.cache.SetToken(cmd.Context(), sess.Token)
	fmt.Printf("logged in as %s (%s), incidents loaded from %s\n", sess.User.Username, sess.User.Role, src)
	return nil
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVar(&registerUsername, "username", "", "nombre de usuario")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "password")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}
