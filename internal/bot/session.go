package bot

import "sync"

// 多轮对话状态
const (
	// StateAwaitScheduleImage 课表图片上传流程进行中
	StateAwaitScheduleImage = "WAIT_SCHEDULE_IMG"
)

// Session 单个用户的对话状态
type Session struct {
	State  string
	Images [][]byte // 已收到的图片内容，按上传顺序
}

// SessionStore 进程内会话存储。
// 会话只在图片上传这类短流程内存活，不做持久化；重启即重置。
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore 创建会话存储
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Get 取出会话，不存在时返回 nil
func (s *SessionStore) Get(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		copied := *sess
		copied.Images = append([][]byte(nil), sess.Images...)
		return &copied
	}
	return nil
}

// Begin 以给定状态开启新会话，覆盖既有会话
func (s *SessionStore) Begin(userID, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = &Session{State: state}
}

// AppendImage 在图片上传会话中追加一张图片内容，返回累计张数。
// 用户不在上传会话中时返回 0。
func (s *SessionStore) AppendImage(userID string, image []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok || sess.State != StateAwaitScheduleImage {
		return 0
	}
	sess.Images = append(sess.Images, image)
	return len(sess.Images)
}

// Clear 结束会话
func (s *SessionStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
