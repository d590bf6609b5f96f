package common

import (
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	rand.Seed(time.Now().UnixNano())
	var err error
	snowflakeNode, err = snowflake.NewNode(int64(os.Getpid() % 1024))
	if err != nil {
		snowflakeNode, _ = snowflake.NewNode(1)
	}
}

// UUIDint64 returns a cluster-unique int64 id for database rows.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns a random uuid v4 string.
func UUID() string {
	return uuid.NewString()
}

// TrimmedOr returns the trimmed value, or defval when the result is empty.
func TrimmedOr(value, defval string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return defval
	}
	return v
}

// RandomHex returns n random hex characters, used for request nonces.
func RandomHex(n int) string {
	const hexchars = "0123456789abcdef"
	b := make([]byte, n)
	for i := range b {
		b[i] = hexchars[rand.Intn(len(hexchars))]
	}
	return string(b)
}
