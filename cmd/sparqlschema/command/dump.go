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
	"github.com/spf13/cobra"
)

const flagInput = "input"

func NewDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write a schema document in another format.",
		Long: "Read a schema document written as JSON or YAML and write it again, " +
			"for instance as N-Quads or JSON-LD.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _ := cmd.Flags().GetString(flagInput)
			doc, err := readSchema(cmd.InOrStdin(), in)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString(flagOutput)
			typ, _ := cmd.Flags().GetString(flagFormat)
			return writeSchema(cmd.OutOrStdout(), out, typ, doc)
		},
	}
	cmd.Flags().StringP(flagInput, "i", "", `schema document to read (".gz" supported, "-" or empty for stdin)`)
	cmd.Flags().StringP(flagOutput, "o", "", `file to write to ("-" or empty for stdout)`)
	cmd.Flags().StringP(flagFormat, "f", "", "output format instead of extension detection ("+formatNames()+")")
	return cmd
}
