// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package async

// RaceEnabled is true when the race detector is active.
// Used by tests to skip stress tests whose atomix orderings trigger
// false positives under the race detector.
const RaceEnabled = true
