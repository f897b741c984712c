package feast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/pkg/conv"
)

// DefaultEventsFeature 是在线特征中存放近期交互记录的特征名，
// 值为 JSON 序列化的交互数组，由离线作业按用户物化。
const DefaultEventsFeature = "user_interactions:recent_events"

// InteractionStore 把 Feast 在线特征适配为交互历史存储，
// 实现 core.InteractionStore，使画像构建可以直连特征平台。
type InteractionStore struct {
	Client Client

	// Feature 覆盖默认的交互特征名（可选）
	Feature string

	// EntityKey 是实体主键名，零值按 "user_id" 处理
	EntityKey string
}

func NewInteractionStore(client Client) *InteractionStore {
	return &InteractionStore{Client: client}
}

func (s *InteractionStore) feature() string {
	if s.Feature != "" {
		return s.Feature
	}
	return DefaultEventsFeature
}

func (s *InteractionStore) entityKey() string {
	if s.EntityKey != "" {
		return s.EntityKey
	}
	return "user_id"
}

// ListByUser 拉取用户的近期交互记录，eventTypes 为空时返回全部类型。
// 特征缺失的用户返回空历史，不视为错误。
func (s *InteractionStore) ListByUser(ctx context.Context, userID string, eventTypes ...string) ([]core.Interaction, error) {
	resp, err := s.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   []string{s.feature()},
		EntityRows: []map[string]interface{}{{s.entityKey(): userID}},
	})
	if err != nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeUpstreamError,
			"feast online features: "+err.Error())
	}
	if len(resp.FeatureVectors) == 0 {
		return nil, nil
	}

	raw, ok := resp.FeatureVectors[0].Values[s.feature()]
	if !ok {
		return nil, nil
	}

	interactions, err := decodeEvents(raw)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeUpstreamError,
			"decode interactions feature: "+err.Error())
	}

	if len(eventTypes) == 0 {
		return interactions, nil
	}
	wanted := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		wanted[t] = true
	}
	out := make([]core.Interaction, 0, len(interactions))
	for _, in := range interactions {
		if wanted[in.EventType] {
			out = append(out, in)
		}
	}
	return out, nil
}

// decodeEvents 解析交互特征值，兼容两种物化形态：
// 整体 JSON 数组字符串，或逐条 JSON 对象的字符串列表。
func decodeEvents(raw interface{}) ([]core.Interaction, error) {
	if s, ok := conv.ToString(raw); ok {
		var out []core.Interaction
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	parts := conv.SliceAnyToString(raw)
	if parts == nil {
		return nil, fmt.Errorf("unsupported feature value type %T", raw)
	}
	out := make([]core.Interaction, 0, len(parts))
	for _, p := range parts {
		var in core.Interaction
		if err := json.Unmarshal([]byte(p), &in); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}
