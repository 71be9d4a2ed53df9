// Package cache 缓存层 Key 常量
package cache

// KeyUserSummary 用户摘要缓存 Key 前缀，后接用户 ID
const KeyUserSummary = "user_summary:"
