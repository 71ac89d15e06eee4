package checkpoint

import (
	"fmt"
	"strconv"
	"strings"
)

type redisVersion struct {
	ver          string
	major, minor int
}

// SET/GET/EXISTS/DEL are all that the store uses; 2.6 is the oldest server
// go-redis still talks to.
var oldestSupportedVer = redisVersion{"2.6.x", 2, 6}

func parseRedisVersion(v string) (ver redisVersion, err error) {
	parts := strings.Split(v, ".")
	if len(parts) < 2 {
		err = fmt.Errorf("invalid redisVersion: %v", v)
		return
	}
	ver.ver = v
	ver.major, err = strconv.Atoi(parts[0])
	if err != nil {
		return
	}
	ver.minor, err = strconv.Atoi(parts[1])
	return
}

func (ver redisVersion) olderThan(v2 redisVersion) bool {
	if ver.major < v2.major {
		return true
	}
	if ver.major > v2.major {
		return false
	}
	return ver.minor < v2.minor
}

func (ver redisVersion) String() string {
	return ver.ver
}

type redisInfo struct {
	aofEnabled      bool
	maxMemoryPolicy string
	redisVersion    string
}

// checkRedisInfo inspects INFO output. Checkpoints written while AOF is off
// can be lost when redis restarts, which only costs a re-upload, so that is
// a warning. An eviction policy other than noeviction can silently drop
// checkpoints and is warned about too.
func checkRedisInfo(rawInfo string) (info redisInfo, err error) {
	lines := strings.Split(strings.TrimSpace(rawInfo), "\n")
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		kvPair := strings.SplitN(l, ":", 2)
		if len(kvPair) < 2 {
			continue
		}
		key, val := kvPair[0], kvPair[1]
		switch key {
		case "aof_enabled":
			info.aofEnabled = val == "1"
			if val == "0" {
				logger.Warnf("AOF is not enabled, checkpoints may be lost if Redis is not shutdown properly.")
			}
		case "maxmemory_policy":
			info.maxMemoryPolicy = val
			if val != "noeviction" {
				logger.Warnf("maxmemory_policy is %s, checkpoints may be evicted; noeviction is recommended", val)
			}
		case "redis_version":
			info.redisVersion = val
			ver, perr := parseRedisVersion(val)
			if perr != nil {
				logger.Warnf("Failed to parse Redis server version %q: %s", val, perr)
			} else if ver.olderThan(oldestSupportedVer) {
				return info, fmt.Errorf("redis version %s is older than %s", ver, oldestSupportedVer)
			}
		}
	}
	return
}
