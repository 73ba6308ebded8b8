package domain

// AllowedModels is the fixed set of device models buyers can filter by.
var AllowedModels = []string{
	"iPhone 8", "iPhone 8 Plus",
	"iPhone X", "iPhone XR", "iPhone XS", "iPhone XS Max",
	"iPhone 11", "iPhone 11 Pro", "iPhone 11 Pro Max",
	"iPhone 12", "iPhone 12 Mini", "iPhone 12 Pro", "iPhone 12 Pro Max",
	"iPhone 13", "iPhone 13 Mini", "iPhone 13 Pro", "iPhone 13 Pro Max",
	"iPhone 14", "iPhone 14 Plus", "iPhone 14 Pro", "iPhone 14 Pro Max",
	"iPhone 15", "iPhone 15 Plus", "iPhone 15 Pro", "iPhone 15 Pro Max",
	"iPhone 16", "iPhone 16 Plus", "iPhone 16 Pro", "iPhone 16 Pro Max",
	"iPhone 17", "iPhone 17 Plus", "iPhone 17 Pro", "iPhone 17 Pro Max",
}

var allowedModelSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AllowedModels))
	for _, name := range AllowedModels {
		m[name] = struct{}{}
	}
	return m
}()

// IsAllowedModel reports whether name is exactly one of AllowedModels.
// Matching is case-sensitive, as in the listing filter.
func IsAllowedModel(name string) bool {
	_, ok := allowedModelSet[name]
	return ok
}

// Principal is the authenticated identity resolved once per request and
// passed explicitly to every service call. A nil *Principal is anonymous.
type Principal struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	SessionID string `json:"-"`
}

// Sender returns the chat sender tag for messages written by p.
func (p *Principal) Sender() string {
	if p != nil && p.IsAdmin {
		return SenderAdmin
	}
	return SenderUser
}

// CanAccessConversation reports whether p may read or write the
// conversation of userID: administrators see all, users only their own.
func (p *Principal) CanAccessConversation(userID uint) bool {
	if p == nil {
		return false
	}
	return p.IsAdmin || p.UserID == userID
}
