package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/linhai/battswap/pkg/jwt"
)

// 集成测试辅助工具
// 测试对着一个已启动的服务实例跑(默认localhost:8080),
// 服务未启动时整组跳过,不在CI里制造红灯

const (
	// DefaultBaseURL 本地服务默认地址
	DefaultBaseURL = "http://localhost:8080"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second

	// devJWTSecret 开发环境配置里的JWT密钥,用于直接铸造测试Token
	// (司机账号体系在独立服务里,这里不走登录接口)
	devJWTSecret = "your-secret-key-change-in-production"
)

// BaseURL 服务地址,可用BATTSWAP_TEST_BASE_URL覆盖
func BaseURL() string {
	if url := os.Getenv("BATTSWAP_TEST_BASE_URL"); url != "" {
		return url
	}
	return DefaultBaseURL
}

// APIBase API路由前缀
func APIBase() string {
	return BaseURL() + "/api/v1"
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RequireServer 检查服务是否可达,不可达时跳过测试
func RequireServer(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(BaseURL() + "/ping")
	if err != nil {
		t.Skipf("服务未启动,跳过集成测试: %v", err)
	}
	resp.Body.Close()
}

// TestToken 为指定司机铸造一个有效的访问Token
func TestToken(t *testing.T, driverID uint) string {
	t.Helper()
	manager := jwt.NewManager(devJWTSecret, time.Hour, 24*time.Hour)
	pair, err := manager.GenerateToken(driverID, "13800000000")
	require.NoError(t, err, "铸造测试Token失败")
	return pair.AccessToken
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	t.Helper()
	jsonData, err := json.Marshal(data)
	require.NoError(t, err, "JSON序列化失败")

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return doRequest(t, req)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err, "创建HTTP请求失败")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return doRequest(t, req)
}

func doRequest(t *testing.T, req *http.Request) *Response {
	t.Helper()
	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(body, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(body))

	return &result
}
