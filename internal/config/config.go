// Package config assembles runtime configuration from CLI flags, an optional
// YAML file and the environment. Flags win over the file; secrets come from
// the environment only.
package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs to start.
type Config struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"logLevel"`

	// DatabaseURL is the Postgres connection string. Empty runs the server
	// on the in-memory store, which loses everything on restart.
	DatabaseURL string `yaml:"-"`

	// AirtableToken authenticates against the tabular source.
	AirtableToken string `yaml:"-"`

	// WorkspaceKeyFile is the path to the service account key JSON. Empty
	// disables directory provisioning (exports log instead).
	WorkspaceKeyFile string `yaml:"workspaceKeyFile"`
	// WorkspacePrincipal is the directory admin the service account
	// impersonates.
	WorkspacePrincipal string `yaml:"workspacePrincipal"`
	// WorkspaceDomain overrides the email domain, "@..." included.
	WorkspaceDomain string `yaml:"workspaceDomain"`
	// WorkspaceOrgUnit overrides the org unit new accounts land in.
	WorkspaceOrgUnit string `yaml:"workspaceOrgUnit"`

	// SendgridKey authenticates the mail provider. Empty disables mail.
	SendgridKey string `yaml:"-"`
	// MailOverrideRecipient redirects every outgoing email to one address.
	// Set it on every non-production deployment.
	MailOverrideRecipient string `yaml:"mailOverrideRecipient"`

	configFile string
}

// Parse reads CLI flags, overlays the config file, then fills secrets from
// the environment.
func Parse() *Config {
	c := &Config{}
	flag.StringVar(&c.configFile, "config", "", "Path to config file (YAML)")
	flag.StringVar(&c.Listen, "listen", "", "HTTP listen address")
	flag.StringVar(&c.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	if c.configFile != "" {
		if err := c.loadFile(c.configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config file: %v\n", err)
			os.Exit(1)
		}
	}

	c.DatabaseURL = os.Getenv("DATABASE_URL")
	c.AirtableToken = os.Getenv("AIRTABLE_TOKEN")
	c.SendgridKey = os.Getenv("SENDGRID_API_KEY")
	if v := os.Getenv("WORKSPACE_SA_JSON"); v != "" {
		c.WorkspaceKeyFile = v
	}
	if v := os.Getenv("WORKSPACE_PRINCIPAL"); v != "" {
		c.WorkspacePrincipal = v
	}
	if v := os.Getenv("MAIL_OVERRIDE_RECIPIENT"); v != "" {
		c.MailOverrideRecipient = v
	}

	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// loadFile reads a YAML config file. File values apply only where the
// corresponding flag was not set.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if c.Listen == "" && file.Listen != "" {
		c.Listen = file.Listen
	}
	if c.LogLevel == "" && file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	c.WorkspaceKeyFile = file.WorkspaceKeyFile
	c.WorkspacePrincipal = file.WorkspacePrincipal
	c.WorkspaceDomain = file.WorkspaceDomain
	c.WorkspaceOrgUnit = file.WorkspaceOrgUnit
	c.MailOverrideRecipient = file.MailOverrideRecipient

	return nil
}
