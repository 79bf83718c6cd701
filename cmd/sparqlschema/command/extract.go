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

package command

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/sparqlschema/clog"
	"github.com/cayleygraph/sparqlschema/config"
	"github.com/cayleygraph/sparqlschema/extract"
	chttp "github.com/cayleygraph/sparqlschema/internal/http"
)

const (
	flagOutput  = "output"
	flagFormat  = "format"
	flagMetrics = "metrics"
)

func registerEndpointFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("endpoint", "e", "", "SPARQL endpoint URL")
	cmd.Flags().String("graph", "", "named graph to restrict queries to")
	cmd.Flags().String("method", "", `HTTP method used for queries ("GET" or "POST")`)
}

func NewExtractCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the schema of a SPARQL endpoint.",
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, args []string) {
			bindFlags(v, cmd, flagOutput, flagFormat, flagMetrics)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}
			ex := extract.New(cfg, nil)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if addr, _ := cmd.Flags().GetString(flagMetrics); addr != "" {
				sctx, cancel := context.WithCancel(ctx)
				defer cancel()
				go func() {
					if err := chttp.Serve(sctx, addr, chttp.NewRouter(ex.Executor())); err != nil {
						clog.Errorf("metrics server: %v", err)
					}
				}()
			}

			start := time.Now()
			doc, err := ex.Run(ctx)
			if err != nil {
				return err
			}
			clog.Infof("extraction took %v", time.Since(start))
			out, _ := cmd.Flags().GetString(flagOutput)
			typ, _ := cmd.Flags().GetString(flagFormat)
			return writeSchema(cmd.OutOrStdout(), out, typ, doc)
		},
	}
	registerEndpointFlags(cmd)
	cmd.Flags().String("name", "", "name of the schema document (defaults to the endpoint)")
	cmd.Flags().String("classification_property", "", "predicate whose objects are classes")
	cmd.Flags().Int("workers", 0, "number of queries in flight")
	cmd.Flags().String("neighbor_strategy", "", `neighbor discovery strategy ("`+config.StrategyPerClass+`" or "`+config.StrategyAll+`")`)
	cmd.Flags().Duration("run_timeout", 0, "return a partial schema once this much time has passed (0 for no limit)")
	cmd.Flags().Float64("query_rate", 0, "maximum queries per second (0 for no limit)")

	cmd.Flags().StringP(flagOutput, "o", "", `file to write the schema to (".gz" supported, "-" or empty for stdout)`)
	cmd.Flags().StringP(flagFormat, "f", "", "output format instead of extension detection ("+formatNames()+")")
	cmd.Flags().String(flagMetrics, "", "serve /health, /status and /metrics on this address while extracting")
	return cmd
}
