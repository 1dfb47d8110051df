// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package site

import (
	"github.com/olegiv/folio/internal/model"
)

// CurrentSchemaVersion is stamped on every merged document.
// Version 1 is the unversioned document written by the first clients.
const CurrentSchemaVersion = 2

// DefaultAdminPassword is the shared secret of documents that never set one.
const DefaultAdminPassword = "admin"

// Defaults returns a fresh deep copy of the default document.
func Defaults() *model.SiteDocument {
	return Clone(defaultDocument())
}

// defaultDocument builds the default schema. It is rebuilt on every call so
// callers can never alias it.
func defaultDocument() *model.SiteDocument {
	return &model.SiteDocument{
		SchemaVersion: CurrentSchemaVersion,
		Translations: map[string]model.Translation{
			model.LangVI: translationsVI(),
			model.LangEN: translationsEN(),
		},
		Skills: []model.SkillGroup{
			{ID: "1", Cat: "cat1", Icon: "Layout", Items: []string{"React", "Next.js", "Tailwind", "Framer Motion", "TypeScript"}},
			{ID: "2", Cat: "cat2", Icon: "Cpu", Items: []string{"Go", "Rust", "Node.js", "PostgreSQL", "Redis"}},
			{ID: "3", Cat: "cat3", Icon: "Globe", Items: []string{"AWS", "Docker", "Kubernetes", "CI/CD", "Terraform"}},
		},
		Projects: []model.Project{
			{ID: "1", Title: "Nexus Core Platform", Desc: "Kiến trúc hệ thống Micro-services cho Fintech.", Tags: []string{"Go", "gRPC", "AWS"}, Cat: "Architecture"},
			{ID: "2", Title: "OmniAI Engine", Desc: "Tích hợp AI dự đoán hành vi người dùng.", Tags: []string{"Python", "TensorFlow", "React"}, Cat: "AI/ML"},
			{ID: "3", Title: "Quantum Dashboard", Desc: "Trình quản lý dữ liệu thời gian thực.", Tags: []string{"Next.js", "WebSockets"}, Cat: "Web App"},
		},
		Testimonials: []model.Testimonial{
			{ID: "1", Author: "CTO, TechVanguard", Content: "Phú không chỉ là một lập trình viên giỏi, anh ấy là một đối tác chiến lược có tầm nhìn sâu sắc.", Role: "Đối tác cấp cao"},
			{ID: "2", Author: "CEO, InnovateX", Content: "Giải pháp kiến trúc của Phú đã giúp chúng tôi scale hệ thống lên gấp 10 lần chỉ trong 3 tháng.", Role: "Khách hàng"},
		},
		Courses: []model.Course{
			{ID: "1", Name: "Go Backend Foundations", Level: "Beginner", Duration: "6 weeks", Description: "HTTP services, SQL and testing in idiomatic Go."},
			{ID: "2", Name: "Cloud Native Architecture", Level: "Advanced", Duration: "8 weeks", Description: "Containers, Kubernetes and observability for production systems."},
		},
		ContactInfo: model.ContactInfo{
			Email:   "phu@example.com",
			Phone:   "090 000 0000",
			Address: "Hồ Chí Minh, Việt Nam",
			Socials: defaultSocials(),
		},
		Socials:       defaultSocials(),
		Inquiries:     []model.Inquiry{},
		ChatLogs:      []model.ChatLog{},
		Registrations: []model.Registration{},
		AdminPassword: DefaultAdminPassword,
		Theme:         model.DefaultTheme,
		Snapshots:     []model.Snapshot{},
	}
}

func defaultSocials() model.Socials {
	return model.Socials{
		Facebook: model.Str("https://facebook.com"),
		Youtube:  model.Str("https://youtube.com"),
		Zalo:     model.Str("https://zalo.me"),
		Linkedin: model.Str("https://linkedin.com"),
		Github:   model.Str("https://github.com"),
	}
}

func translationsVI() model.Translation {
	return model.Translation{
		"nav":          {"home": "Trang chủ", "about": "Giới thiệu", "skills": "Kỹ năng", "projects": "Dự án", "experience": "Kinh nghiệm", "lab": "Phòng Lab", "contact": "Liên hệ", "getInTouch": "Liên hệ ngay"},
		"hero":         {"badge": "Sẵn sàng cho các cơ hội mới", "titlePrefix": "Kiến tạo", "titleSuffix": "Tương lai của Web.", "bio": "Tôi là Đồng Minh Phú, một kiến trúc sư phần mềm tận tâm với việc xây dựng các hệ thống hiệu suất cao và tích hợp AI trực quan.", "explore": "Khám phá sản phẩm"},
		"about":        {"title": "Bản sắc Kỹ thuật", "stats": map[string]any{"projects": "Dự án đã bàn giao", "lines": "Dòng mã nguồn"}, "expTitle": "6+ NĂM", "expDesc": "Kỹ thuật hóa các giải pháp tác động cao."},
		"skills":       {"title": "Năng lực Cốt lõi", "subtitle": "Nền tảng công nghệ tôi tin dùng.", "cat1": "Chuyên môn Frontend", "cat2": "Hệ thống Backend", "cat3": "Cloud & DevOps"},
		"projects":     {"title": "Dự án Tiêu biểu", "subtitle": "Trình diễn sự xuất sắc kỹ thuật.", "filters": []any{"Tất cả", "Ứng dụng Web", "AI/ML", "Kiến trúc"}},
		"testimonials": {"title": "Đánh giá từ đối tác", "subtitle": "Những phản hồi về chất lượng dịch vụ và tư vấn kỹ thuật."},
		"courses":      {"title": "Khóa học", "subtitle": "Đăng ký các khóa đào tạo thực chiến.", "register": "Đăng ký", "success": "Đăng ký thành công!"},
		"codelab":      {"title": "Code Lab", "subtitle": "Trình diễn những cấu trúc mã nguồn tối ưu."},
		"ailab":        {"title": "AI Innovation Lab", "subtitle": "Mô tả ý tưởng của bạn, và tôi sẽ kiến tạo bản demo ngay lập tức.", "placeholder": "Ví dụ: Tạo landing page cho startup công nghệ xanh với phong cách tối giản...", "button": "Kiến tạo Demo", "generating": "Đang thiết lập cấu trúc...", "result": "Kết quả Demo"},
		"newsletter":   {"title": "Tech Insights", "subtitle": "Đăng ký nhận những phân tích chuyên sâu hàng tuần về Cloud & AI.", "placeholder": "Email của bạn...", "button": "Đăng ký"},
		"contact":      {"title": "Sẵn sàng khởi động", "titleSuffix": "dự án lớn tiếp theo?", "labels": map[string]any{"name": "Họ tên", "email": "Email", "phone": "Số điện thoại", "message": "Tin nhắn", "send": "Gửi yêu cầu", "success": "Cảm ơn! Tôi sẽ phản hồi sớm nhất."}},
		"chat":         {"welcome": "Chào mừng! Tôi là bản sao số của Phú. Tôi có thể giúp gì cho bạn?", "agent": "Phú Agent v3.0", "typing": "Đang gõ..."},
		"terminal":     {"welcome": "Hệ điều hành PhúOS v1.0.0. Gõ 'help' để xem các lệnh.", "placeholder": "Gõ lệnh tại đây..."},
		"stats":        {"visits": "Lượt truy cập"},
		"footer":       {"rights": "Bảo lưu mọi quyền.", "builtWith": "Xây dựng với Go và React."},
	}
}

func translationsEN() model.Translation {
	return model.Translation{
		"nav":          {"home": "Home", "about": "About", "skills": "Skills", "projects": "Projects", "experience": "Experience", "lab": "AI Lab", "contact": "Contact", "getInTouch": "Get in Touch"},
		"hero":         {"badge": "Available for new opportunities", "titlePrefix": "Engineering the", "titleSuffix": "Future of Web.", "bio": "I'm Đồng Minh Phú, a software architect dedicated to building high-performance systems and intuitive AI integrations.", "explore": "Explore My Work"},
		"about":        {"title": "Engineering Identity", "stats": map[string]any{"projects": "Projects Shipped", "lines": "Lines of Code"}, "expTitle": "6+ YRS", "expDesc": "Engineering high-impact solutions."},
		"skills":       {"title": "Core Competencies", "subtitle": "The stack I trust for building scalable systems.", "cat1": "Frontend Expertise", "cat2": "Backend Systems", "cat3": "Cloud & DevOps"},
		"projects":     {"title": "Selected Projects", "subtitle": "Showcasing technical excellence.", "filters": []any{"All", "Web App", "AI/ML", "Architecture"}},
		"testimonials": {"title": "Testimonials", "subtitle": "Feedback from partners on quality and technical consulting."},
		"courses":      {"title": "Courses", "subtitle": "Hands-on training programs.", "register": "Register", "success": "You are registered!"},
		"codelab":      {"title": "Code Lab", "subtitle": "Showcasing optimized architectural snippets."},
		"ailab":        {"title": "AI Innovation Lab", "subtitle": "Describe your vision, and I will architect a live demo in seconds.", "placeholder": "e.g., A minimalist landing page for a sustainable fashion brand...", "button": "Generate Demo", "generating": "Architecting your vision...", "result": "Live Demo Result"},
		"newsletter":   {"title": "Tech Insights", "subtitle": "Subscribe for weekly deep dives into Cloud & AI.", "placeholder": "Your email...", "button": "Subscribe"},
		"contact":      {"title": "Ready to start", "titleSuffix": "the next big thing?", "labels": map[string]any{"name": "Full Name", "email": "Email", "phone": "Phone Number", "message": "Message", "send": "Send Inquiry", "success": "Thank you! I will get back to you soon."}},
		"chat":         {"welcome": "Welcome! I'm Phú's digital twin. How can I assist you today?", "agent": "Phú Agent v3.0", "typing": "Typing..."},
		"terminal":     {"welcome": "PhúOS v1.0.0. Type 'help' for available commands.", "placeholder": "Enter command..."},
		"stats":        {"visits": "Visits"},
		"footer":       {"rights": "All rights reserved.", "builtWith": "Built with Go and React."},
	}
}
