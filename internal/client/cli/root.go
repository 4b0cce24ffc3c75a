package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Ключи конфигурации клиента
const (
	keyServer   = "server"
	keyDB       = "db"
	keyLogLevel = "log-level"
	keyPassword = "password"
	keyRemote   = "remote"
	keyConfig   = "config"
)

// Config настройки клиента: флаги, переменные CVAGENT_* и файл конфигурации
type Config struct {
	ServerURL string
	DBPath    string
	LogLevel  string
	Password  string
	Remote    bool
}

// NewViper создает viper с префиксом окружения CVAGENT и значениями по умолчанию
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("CVAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyServer, "http://localhost:8080/api")
	v.SetDefault(keyDB, "cvagent-client.db")
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyRemote, false)
	return v
}

// ConfigFrom читает Config из viper
func ConfigFrom(v *viper.Viper) Config {
	return Config{
		ServerURL: v.GetString(keyServer),
		DBPath:    v.GetString(keyDB),
		LogLevel:  v.GetString(keyLogLevel),
		Password:  v.GetString(keyPassword),
		Remote:    v.GetBool(keyRemote),
	}
}

// Builder собирает Cli для выполнения команды
type Builder func(ctx context.Context, cfg Config) (*Cli, func() error, error)

// root хранит собранный Cli между PreRun и командой
type root struct {
	v      *viper.Viper
	build  Builder
	cli    *Cli
	closer func() error
	cfg    Config
}

// NewRootCommand создает дерево команд cvagent
func NewRootCommand(v *viper.Viper, build Builder, version string) *cobra.Command {
	r := &root{v: v, build: build}

	cmd := &cobra.Command{
		Use:           "cvagent",
		Short:         "Resume and cover letter manager",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return r.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return r.teardown()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(keyServer, v.GetString(keyServer), "API base URL")
	flags.String(keyDB, v.GetString(keyDB), "Path to local session database")
	flags.String(keyLogLevel, v.GetString(keyLogLevel), "Log level: debug, info, warn, error")
	flags.String(keyConfig, "", "Path to config file (yaml, json or toml)")
	for _, key := range []string{keyServer, keyDB, keyLogLevel, keyConfig} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}

	cmd.AddCommand(
		r.loginCommand(),
		r.registerCommand(),
		r.logoutCommand(),
		r.statusCommand(),
		r.meCommand(),
		r.resumeCommand(),
		r.coverLetterCommand(),
		r.jobCommand(),
		r.projectCommand(),
	)

	return cmd
}

func (r *root) setup(ctx context.Context) error {
	if path := r.v.GetString(keyConfig); path != "" {
		r.v.SetConfigFile(path)
		if err := r.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	r.cfg = ConfigFrom(r.v)
	c, closer, err := r.build(ctx, r.cfg)
	if err != nil {
		return err
	}
	r.cli = c
	r.closer = closer
	return nil
}

func (r *root) teardown() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer()
	r.closer = nil
	return err
}
