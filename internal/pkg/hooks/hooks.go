package hooks

import (
	"sync"

	"github.com/qs3c/comment_go_server/internal/model"
)

// CheckResult 检查钩子的三态返回值
type CheckResult int

const (
	NoOpinion CheckResult = iota // 弃权，交给后续钩子
	Approve                      // 明确放行
	Veto                         // 明确否决
)

// 通知事件名
const (
	EventConfirmationReceived = "confirmation_received"
	EventPosted               = "comment_posted"
	EventUpdated              = "comment_updated"
	EventRemoved              = "comment_removed"
	EventPinned               = "comment_pinned"
)

// Event 钩子上下文
type Event struct {
	ContentType string
	ObjectPK    string
	SiteID      int64
	UserID      *int64
	Comment     *model.Comment
}

type CheckFunc func(*Event) CheckResult

type NotifyFunc func(*Event)

// Registry 发布流程的扩展点
// 检查钩子按注册顺序执行，首个非弃权结果生效
type Registry struct {
	mu              sync.RWMutex
	authorizeChecks []CheckFunc
	postChecks      []CheckFunc
	listeners       map[string][]NotifyFunc
}

func NewRegistry() *Registry {
	return &Registry{
		listeners: make(map[string][]NotifyFunc),
	}
}

// RegisterAuthorize 注册提交授权钩子，放行的请求跳过防篡改校验
func (r *Registry) RegisterAuthorize(f CheckFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authorizeChecks = append(r.authorizeChecks, f)
}

// RegisterWillBePosted 注册落库前检查钩子，可否决整次发布
func (r *Registry) RegisterWillBePosted(f CheckFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.postChecks = append(r.postChecks, f)
}

// On 注册事件监听
func (r *Registry) On(event string, f NotifyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[event] = append(r.listeners[event], f)
}

// Authorized 判断请求是否被授权钩子放行
func (r *Registry) Authorized(e *Event) bool {
	r.mu.RLock()
	checks := r.authorizeChecks
	r.mu.RUnlock()

	for _, f := range checks {
		switch f(e) {
		case Approve:
			return true
		case Veto:
			return false
		}
	}
	return false
}

// AllowPosting 判断评论是否被落库前钩子放行
func (r *Registry) AllowPosting(e *Event) bool {
	r.mu.RLock()
	checks := r.postChecks
	r.mu.RUnlock()

	for _, f := range checks {
		if f(e) == Veto {
			return false
		}
	}
	return true
}

// Notify 同步触发事件监听，监听器不能阻断主流程
func (r *Registry) Notify(event string, e *Event) {
	r.mu.RLock()
	listeners := r.listeners[event]
	r.mu.RUnlock()

	for _, f := range listeners {
		f(e)
	}
}
