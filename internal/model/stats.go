// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// ChatStats holds counts derived from a message sequence. It is never stored.
type ChatStats struct {
	Total      int  `json:"totalMessages"`
	User       int  `json:"userMessages"`
	Bot        int  `json:"botMessages"`
	HasHistory bool `json:"hasHistory"`
}

// ComputeStats counts messages by role.
func ComputeStats(msgs []Message) ChatStats {
	stats := ChatStats{Total: len(msgs)}
	for _, m := range msgs {
		switch m.Role {
		case RoleUser:
			stats.User++
		case RoleBot:
			stats.Bot++
		}
	}
	stats.HasHistory = stats.Total > 0
	return stats
}
