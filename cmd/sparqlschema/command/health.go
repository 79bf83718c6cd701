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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/sparqlschema/sparql"
)

func NewHealthCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health [endpoint]",
		Short: "Check that a SPARQL endpoint answers queries.",
		Args:  cobra.MaximumNArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			bindFlags(v, cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := v.GetString("endpoint")
			if len(args) == 1 {
				addr = args[0]
			}
			if addr == "" {
				return fmt.Errorf("no endpoint given")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			c := sparql.NewClient(addr, v.GetString("method"))
			if _, err := c.Query(ctx, sparql.HealthQuery, v.GetDuration("small_query_timeout")); err != nil {
				return fmt.Errorf("endpoint %s is not healthy: %w", addr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "endpoint %s is healthy\n", addr)
			return nil
		},
	}
	registerEndpointFlags(cmd)
	return cmd
}
