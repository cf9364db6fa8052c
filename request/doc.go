// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package request contains the configuration and state types that flow
// through the snag hook pipeline: the untyped Raw configuration owned
// by init hooks, the normalized Options shared by the later phases,
// the PlainResponse and Response values, and the Execution state that
// retry and timeout policies decide on.
package request
