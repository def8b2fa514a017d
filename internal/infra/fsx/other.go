//go:build !unix

package fsx

func isEXDEV(err error) bool { return false }

// TakeOwnership 在非 unix 平台上没有对应语义，直接成功。
func TakeOwnership(path string) error { return nil }
