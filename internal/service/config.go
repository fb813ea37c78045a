// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	App AppServiceConfig // App related config // 应用相关配置
}

// AppServiceConfig app service configuration
// AppServiceConfig 应用服务配置
type AppServiceConfig struct {
	MaxContentLength int // Max note content length in bytes, 0 for unlimited // 笔记内容最大字节数，0 表示不限制
}
