package secform

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

var (
	ErrHashMismatch      = errors.New("安全哈希不匹配")
	ErrTimestampInvalid  = errors.New("时间戳格式错误")
	ErrTimestampExpired  = errors.New("时间戳已过期")
	ErrTimestampInFuture = errors.New("时间戳晚于当前时间")
)

// Checker 校验评论提交的防篡改字段
// 表单下发 (timestamp, hash)，提交时原样带回，哈希覆盖目标标识与时间戳
type Checker struct {
	secret []byte
	maxAge time.Duration
}

func NewChecker(secret string, maxAgeSeconds int64) *Checker {
	return &Checker{
		secret: []byte(secret),
		maxAge: time.Duration(maxAgeSeconds) * time.Second,
	}
}

// Generate 为目标生成当前时刻的安全字段
func (ck *Checker) Generate(contentType, objectPK string) (timestamp, hash string) {
	return ck.GenerateAt(contentType, objectPK, time.Now().Unix())
}

// GenerateAt 为目标在指定时刻生成安全字段
func (ck *Checker) GenerateAt(contentType, objectPK string, unix int64) (timestamp, hash string) {
	timestamp = strconv.FormatInt(unix, 10)
	return timestamp, ck.compute(contentType, objectPK, timestamp)
}

// Verify 校验带回的安全字段，任何失败都不向调用方之外透露原因
func (ck *Checker) Verify(contentType, objectPK, timestamp, hash string) error {
	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrTimestampInvalid
	}

	now := time.Now()
	issued := time.Unix(unix, 0)
	if issued.After(now.Add(time.Minute)) {
		return ErrTimestampInFuture
	}
	if now.Sub(issued) > ck.maxAge {
		return ErrTimestampExpired
	}

	expected := ck.compute(contentType, objectPK, timestamp)
	if !hmac.Equal([]byte(expected), []byte(hash)) {
		return ErrHashMismatch
	}
	return nil
}

func (ck *Checker) compute(contentType, objectPK, timestamp string) string {
	mac := hmac.New(sha256.New, ck.secret)
	mac.Write([]byte(contentType))
	mac.Write([]byte{0})
	mac.Write([]byte(objectPK))
	mac.Write([]byte{0})
	mac.Write([]byte(timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}
