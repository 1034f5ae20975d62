package entity

// PageResponse 是分页列表的统一响应信封。
type PageResponse struct {
	Total   int64       `json:"total"`
	Pages   int         `json:"pages"`
	Current int         `json:"current"`
	Size    int         `json:"size"`
	Records interface{} `json:"records"`
}

// NewPageResponse 根据总数和页参数计算分页信封。页码从 1 开始。
func NewPageResponse(total int64, page, size int, records interface{}) PageResponse {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	pages := int((total + int64(size) - 1) / int64(size))
	return PageResponse{
		Total:   total,
		Pages:   pages,
		Current: page,
		Size:    size,
		Records: records,
	}
}

// BaseParams 包含通用的分页参数。
type BaseParams struct {
	Page int `json:"page" form:"page" query:"page"`
	Size int `json:"size" form:"size" query:"size"`
}

// Normalize 将分页参数收敛到合法范围。
func (p *BaseParams) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = 10
	}
	if p.Size > 100 {
		p.Size = 100
	}
}
