// Package manage 把管理页面提交的表单转换为显式的编辑集合。
//
// 表单字段名形如 "campaign_id_<tag_id>"，每个请求只解析一次，
// 空值会被丢弃，避免把已有字段意外清空。
package manage

import (
	"net/url"
	"slices"
	"strings"

	"nfc-redirect-platform/internal/store"
)

const (
	TagCampaignField  = "campaign_id_"
	CampaignLinkField = "link_id_"
	LinkLabelField    = "link_label_"
	LinkURLField      = "link_url_"
)

// ParseTagEdits tag_id -> 新的 campaign_id
func ParseTagEdits(form url.Values) map[string]string {
	return collect(form, TagCampaignField)
}

// ParseCampaignEdits camp_id -> 新的 link_id
func ParseCampaignEdits(form url.Values) map[string]string {
	return collect(form, CampaignLinkField)
}

// ParseLinkEdits link_id -> 新的标签和地址
func ParseLinkEdits(form url.Values) map[string]store.LinkEdit {
	edits := map[string]store.LinkEdit{}
	for id, label := range collect(form, LinkLabelField) {
		e := edits[id]
		e.Label = label
		edits[id] = e
	}
	for id, u := range collect(form, LinkURLField) {
		e := edits[id]
		e.URL = u
		edits[id] = e
	}
	return edits
}

// ValidateLinkEdits 检查提交的地址是否是绝对的 http(s) URL，按 link_id 排序返回第一个不合法的
func ValidateLinkEdits(edits map[string]store.LinkEdit) (string, bool) {
	for _, id := range sortedKeys(edits) {
		if e := edits[id]; e.URL != "" && !ValidURL(e.URL) {
			return id, false
		}
	}
	return "", true
}

// ValidateIDEdits 用 valid 检查每个新值，按 key 排序返回第一个不合法的 key
func ValidateIDEdits(edits map[string]string, valid func(string) bool) (string, bool) {
	for _, id := range sortedKeys(edits) {
		if !valid(edits[id]) {
			return id, false
		}
	}
	return "", true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ValidURL 目标地址必须是带主机名的 http(s) URL
func ValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func collect(form url.Values, prefix string) map[string]string {
	out := map[string]string{}
	for key, values := range form {
		if !strings.HasPrefix(key, prefix) || len(values) == 0 {
			continue
		}
		id := strings.TrimPrefix(key, prefix)
		value := strings.TrimSpace(values[0])
		if id == "" || value == "" {
			continue
		}
		out[id] = value
	}
	return out
}
