package repository

import "gorm.io/gorm"

// paginate 分页 scope。pageSize 不为正时不分页；页码从 1 起算，非法页码按第一页处理。
func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(query *gorm.DB) *gorm.DB {
		if pageSize <= 0 {
			return query
		}
		if page < 1 {
			page = 1
		}
		return query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
