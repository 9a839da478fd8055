package signed

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("确认链接无效")
	ErrExpiredToken = errors.New("确认链接已过期")
)

// CommentPayload 待确认评论的完整内容，随确认链接往返
type CommentPayload struct {
	ContentType string `json:"content_type"`
	ObjectPK    string `json:"object_pk"`
	SiteID      int64  `json:"site_id"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	Body        string `json:"body"`
	Type        string `json:"type"`
	Followup    bool   `json:"followup"`
	ReplyTo     int64  `json:"reply_to"`
	IPAddress   string `json:"ip_address"`

	SubmitDate time.Time `json:"submit_date"`
}

type confirmClaims struct {
	Comment CommentPayload `json:"comment"`
	jwt.RegisteredClaims
}

// Dumps 把待确认评论签名为不透明 token
// salt 与 secret 拼接作为签名密钥，保证和登录 token 不可互换
func Dumps(payload *CommentPayload, secret, salt string, expireHours int) (string, error) {
	now := time.Now()
	claims := confirmClaims{
		Comment: *payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey(secret, salt))
}

// Loads 校验并还原待确认评论
func Loads(tokenString, secret, salt string) (*CommentPayload, error) {
	token, err := jwt.ParseWithClaims(tokenString, &confirmClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return signingKey(secret, salt), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*confirmClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &claims.Comment, nil
}

func signingKey(secret, salt string) []byte {
	return []byte(salt + ":" + secret)
}
