/*
Copyright 2025 Jordi Gil.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package rules

import (
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// celExtensions registers the named helpers required by spec.md §4.5's
// expression grammar: DAYS_BETWEEN(date, date), NOW(), TODAY(). The
// environment is otherwise undeclared (see newEnv) so rule expressions
// can reference arbitrary exposure fields without a fixed variable list.
func celExtensions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("DAYS_BETWEEN",
			cel.Overload("days_between_timestamp_timestamp",
				[]*cel.Type{cel.TimestampType, cel.TimestampType}, cel.IntType,
				cel.BinaryBinding(daysBetween),
			),
		),
		cel.Function("NOW",
			cel.Overload("now_timestamp", []*cel.Type{}, cel.TimestampType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return types.Timestamp{Time: time.Now().UTC()}
				}),
			),
		),
		cel.Function("TODAY",
			cel.Overload("today_timestamp", []*cel.Type{}, cel.TimestampType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					now := time.Now().UTC()
					return types.Timestamp{Time: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
				}),
			),
		),
	}
}

func daysBetween(lhs, rhs ref.Val) ref.Val {
	l, ok := lhs.(types.Timestamp)
	if !ok {
		return types.NewErr("DAYS_BETWEEN: first argument is not a timestamp")
	}
	r, ok := rhs.(types.Timestamp)
	if !ok {
		return types.NewErr("DAYS_BETWEEN: second argument is not a timestamp")
	}
	return types.Int(int64(r.Time.Sub(l.Time).Hours() / 24))
}

// newEnv builds the CEL environment shared by every compiled rule. No
// variables are declared: expressions are parsed unchecked (see
// engine.go's compileRule) and resolved dynamically at evaluation time
// through scopeActivation, which is what gives rules access to arbitrary,
// case-insensitive exposure field names.
func newEnv() (*cel.Env, error) {
	return cel.NewEnv(celExtensions()...)
}
