// Copyright 2026 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package command implements the sparqlschema command line.
package command

import (
	goflag "flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cayleygraph/sparqlschema/clog"
	"github.com/cayleygraph/sparqlschema/config"
	"github.com/cayleygraph/sparqlschema/version"
)

const (
	flagConfig = "config"
	envPrefix  = "SPARQLSCHEMA"
)

// NewRootCmd creates the sparqlschema command with all of its subcommands.
// Every call gets its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "sparqlschema",
		Short:         "Infer the schema of the data behind a SPARQL endpoint.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if f := goflag.Lookup("v"); f != nil {
				if n, err := strconv.Atoi(f.Value.String()); err == nil {
					clog.SetV(n)
				}
			}
			return readConfig(v, cmd)
		},
	}
	root.PersistentFlags().StringP(flagConfig, "c", "", "path to an explicit configuration file (JSON, YAML or TOML)")
	root.PersistentFlags().AddGoFlagSet(goflag.CommandLine)

	root.AddCommand(
		NewExtractCmd(v),
		NewHealthCmd(v),
		NewDumpCmd(),
		NewVersionCmd(),
	)
	return root
}

func readConfig(v *viper.Viper, cmd *cobra.Command) error {
	file, _ := cmd.Flags().GetString(flagConfig)
	if file == "" {
		file = os.Getenv(envPrefix + "_CONFIG")
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("sparqlschema")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.sparqlschema")
		v.AddConfigPath("/etc/sparqlschema")
	}
	err := v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok && file == "" {
		clog.Debugf(1, "no configuration file found, going by flags and environment only")
		return nil
	} else if err != nil {
		return fmt.Errorf("cannot read configuration: %w", err)
	}
	clog.Infof("using configuration file %s", v.ConfigFileUsed())
	return nil
}

// bindFlags binds every flag of cmd under its own name, except the ones
// named in skip.
func bindFlags(v *viper.Viper, cmd *cobra.Command, skip ...string) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		for _, s := range skip {
			if s == f.Name {
				return
			}
		}
		v.BindPFlag(f.Name, f)
	})
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Version information.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sparqlschema %s\n", version.Version)
			fmt.Fprintf(out, "Git: %s\n", version.GitHash)
			if version.BuildDate != "" {
				fmt.Fprintf(out, "Build date: %s\n", version.BuildDate)
			}
			return nil
		},
	}
}
