package errors

import "errors"

// ErrDataUnavailable 上游数据源不可达：调用方必须把"无数据"与"不满足条件"区分开，
// 不得把该错误降级为"不可修读"
var ErrDataUnavailable = errors.New("上游学业数据暂不可用")
