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

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/cayleygraph/sparqlschema/clog"
	_ "github.com/cayleygraph/sparqlschema/clog/glog"
	"github.com/cayleygraph/sparqlschema/cmd/sparqlschema/command"
)

func main() {
	flag.Set("logtostderr", "true")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := command.NewRootCmd().ExecuteContext(ctx); err != nil {
		clog.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}
