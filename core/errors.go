package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 注意两个非错误场景：
//   - 未知的 user/item id（冷启动）不是错误，表达为“该通道无信号”
//   - 候选分数全部相同（退化区间）不是错误，归一化返回文档约定的常量
type DomainError struct {
	Code    string // 错误代码（如 "NOT_LOADED", "ARTIFACT_MISSING"）
	Message string // 错误消息
	Module  string // 模块名称（如 "artifact", "content", "cache"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotLoaded       = "NOT_LOADED"       // 工件尚未加载完成就被访问
	ErrorCodeArtifactMissing = "ARTIFACT_MISSING" // 加载时缺少必需的工件文件
	ErrorCodeNotFound        = "NOT_FOUND"        // 资源不存在
	ErrorCodeInvalidInput    = "INVALID_INPUT"    // 输入无效
	ErrorCodeUpstreamError   = "UPSTREAM_ERROR"   // 编码器 / 索引等上游组件失败
	ErrorCodeNotSupported    = "NOT_SUPPORTED"    // 操作不支持
)

// 模块名称常量
const (
	ModuleArtifact = "artifact" // 模型工件模块
	ModuleContent  = "content"  // 内容打分模块
	ModuleCollab   = "cf"       // 协同过滤模块
	ModuleCache    = "cache"    // 结果缓存模块
	ModuleStore    = "store"    // 存储模块
	ModuleFilter   = "filter"   // 过滤模块
)

// IsNotLoaded 检查错误是否为 NOT_LOADED
func IsNotLoaded(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotLoaded
	}
	return false
}

// IsArtifactMissing 检查错误是否为 ARTIFACT_MISSING
func IsArtifactMissing(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeArtifactMissing
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// IsUpstreamError 检查错误是否为 UPSTREAM_ERROR
func IsUpstreamError(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUpstreamError
	}
	return false
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

	// ErrStoreNotSupported 表示操作不支持
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")
)

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
