package middleware

import (
	"fmt"
)

// ElementCounter interface for counting elements (avoids import cycle with room)
type ElementCounter interface {
	Len() int
}

// Limits: per-room and per-message resource caps
type Limits struct {
	MaxRoomSize       int
	MaxElements       int
	MaxMessageSize    int
	MaxRooms          int
	MaxStyleDepth     int
	MaxStyleKeys      int
	MessagesPerSecond float64
	BurstSize         int
}

// NewLimits: creates a new Limits configuration
func NewLimits(maxRoomSize, maxElements, maxMessageSize, maxRooms, maxStyleDepth, maxStyleKeys int, messagesPerSecond float64, burstSize int) *Limits {
	return &Limits{
		MaxRoomSize:       maxRoomSize,
		MaxElements:       maxElements,
		MaxMessageSize:    maxMessageSize,
		MaxRooms:          maxRooms,
		MaxStyleDepth:     maxStyleDepth,
		MaxStyleKeys:      maxStyleKeys,
		MessagesPerSecond: messagesPerSecond,
		BurstSize:         burstSize,
	}
}

// CanAddElement: checks if a project has space for more elements
func (l *Limits) CanAddElement(counter ElementCounter) bool {
	return counter.Len() < l.MaxElements
}

// ValidateMessageSize: checks if a message is within the size limit
func (l *Limits) ValidateMessageSize(msgSize int) bool {
	return msgSize <= l.MaxMessageSize
}

// ValidateStyleComplexity: validates a style mapping's complexity
// Checks nesting depth and unique key count (not array lengths)
func (l *Limits) ValidateStyleComplexity(data map[string]interface{}) error {
	depth, keys := validateComplexity(data, 0)

	if depth > l.MaxStyleDepth {
		return fmt.Errorf("styles nested too deep: %d levels (max %d)", depth, l.MaxStyleDepth)
	}

	if keys > l.MaxStyleKeys {
		return fmt.Errorf("styles too complex: %d keys (max %d)", keys, l.MaxStyleKeys)
	}

	return nil
}

// validateComplexity: recursively checks depth and counts unique keys
func validateComplexity(data interface{}, currentDepth int) (int, int) {
	maxDepth := currentDepth
	keyCount := 0

	switch v := data.(type) {
	case map[string]interface{}:
		keyCount = len(v)
		for _, val := range v {
			subDepth, subKeys := validateComplexity(val, currentDepth+1)
			if subDepth > maxDepth {
				maxDepth = subDepth
			}
			keyCount += subKeys
		}
	case []interface{}:
		// Don't count array length
		for _, val := range v {
			subDepth, subKeys := validateComplexity(val, currentDepth+1)
			if subDepth > maxDepth {
				maxDepth = subDepth
			}
			keyCount += subKeys
		}
	}

	return maxDepth, keyCount
}
