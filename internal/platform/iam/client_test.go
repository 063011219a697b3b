package iam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/kbstack/internal/platform/awserr"
)

// recorder is a query-protocol test server that dispatches on the Action form value.
type recorder struct {
	mu      sync.Mutex
	actions []string
	forms   []map[string]string
	respond func(action string, form map[string]string) (int, string)
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := map[string]string{}
	for k, v := range r.PostForm {
		form[k] = v[0]
	}
	action := form["Action"]

	rec.mu.Lock()
	rec.actions = append(rec.actions, action)
	rec.forms = append(rec.forms, form)
	rec.mu.Unlock()

	status, body := rec.respond(action, form)
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func testClient(t *testing.T, rec *recorder) *Client {
	t.Helper()
	server := httptest.NewServer(rec)
	t.Cleanup(server.Close)

	creds := credentials.NewStaticCredentialsProvider("test-key", "test-secret", "")
	return &Client{
		iam: iam.New(iam.Options{
			Region:       "us-east-1",
			BaseEndpoint: aws.String(server.URL),
			Credentials:  creds,
		}),
		sts: sts.New(sts.Options{
			Region:       "us-east-1",
			BaseEndpoint: aws.String(server.URL),
			Credentials:  creds,
		}),
	}
}

func errorResponse(code string) string {
	return `<ErrorResponse><Error><Type>Sender</Type><Code>` + code + `</Code><Message>test</Message></Error><RequestId>req</RequestId></ErrorResponse>`
}

func TestCallerIdentity(t *testing.T) {
	t.Parallel()

	rec := &recorder{respond: func(string, map[string]string) (int, string) {
		return http.StatusOK, `<GetCallerIdentityResponse><GetCallerIdentityResult>
<Arn>arn:aws:iam::123456789012:user/alice</Arn><UserId>AIDA</UserId><Account>123456789012</Account>
</GetCallerIdentityResult></GetCallerIdentityResponse>`
	}}
	client := testClient(t, rec)

	id, err := client.CallerIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123456789012", id.Account)
	assert.Equal(t, "arn:aws:iam::123456789012:user/alice", id.ARN)
	assert.Equal(t, []string{"GetCallerIdentity"}, rec.actions)
}

func TestCreatePolicy(t *testing.T) {
	t.Parallel()

	rec := &recorder{respond: func(_ string, form map[string]string) (int, string) {
		return http.StatusOK, `<CreatePolicyResponse><CreatePolicyResult><Policy>
<PolicyName>` + form["PolicyName"] + `</PolicyName><Arn>arn:aws:iam::123456789012:policy/` + form["PolicyName"] + `</Arn>
</Policy></CreatePolicyResult></CreatePolicyResponse>`
	}}
	client := testClient(t, rec)

	arn, err := client.CreatePolicy(context.Background(), "kb-s3-policy", "read docs",
		StorageReadPolicy("arn:aws:s3:::docs", "123456789012"))
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::123456789012:policy/kb-s3-policy", arn)
	assert.Contains(t, rec.forms[0]["PolicyDocument"], `"aws:ResourceAccount":"123456789012"`)
}

func TestCreatePolicy_InvalidDocumentNotSent(t *testing.T) {
	t.Parallel()

	rec := &recorder{respond: func(string, map[string]string) (int, string) {
		return http.StatusOK, ""
	}}
	client := testClient(t, rec)

	_, err := client.CreatePolicy(context.Background(), "bad", "", ModelInvokePolicy())
	require.Error(t, err)
	assert.Empty(t, rec.actions)
}

func TestCreatePolicy_AlreadyExists(t *testing.T) {
	t.Parallel()

	rec := &recorder{respond: func(string, map[string]string) (int, string) {
		return http.StatusConflict, errorResponse("EntityAlreadyExists")
	}}
	client := testClient(t, rec)

	_, err := client.CreatePolicy(context.Background(), "p", "", ModelInvokePolicy("arn:aws:bedrock:us-east-1::foundation-model/m"))
	require.Error(t, err)
	assert.True(t, awserr.IsConflict(err))
}

func TestCreateRole(t *testing.T) {
	t.Parallel()

	rec := &recorder{respond: func(_ string, form map[string]string) (int, string) {
		return http.StatusOK, `<CreateRoleResponse><CreateRoleResult><Role>
<RoleName>` + form["RoleName"] + `</RoleName><Arn>arn:aws:iam::123456789012:role/` + form["RoleName"] + `</Arn>
</Role></CreateRoleResult></CreateRoleResponse>`
	}}
	client := testClient(t, rec)

	role, err := client.CreateRole(context.Background(), "kb-role", "kb execution role",
		TrustPolicy("bedrock.amazonaws.com", "123456789012"), 3600)
	require.NoError(t, err)
	assert.Equal(t, "kb-role", role.Name)
	assert.Equal(t, "arn:aws:iam::123456789012:role/kb-role", role.ARN)
	assert.Equal(t, "3600", rec.forms[0]["MaxSessionDuration"])
	assert.Contains(t, rec.forms[0]["AssumeRolePolicyDocument"], "bedrock.amazonaws.com")
}

func TestDetachAndDelete_NotFoundIsSuccess(t *testing.T) {
	t.Parallel()

	rec := &recorder{respond: func(string, map[string]string) (int, string) {
		return http.StatusNotFound, errorResponse("NoSuchEntity")
	}}
	client := testClient(t, rec)
	ctx := context.Background()

	assert.NoError(t, client.DetachRolePolicy(ctx, "r", "arn:aws:iam::1:policy/p"))
	assert.NoError(t, client.DeletePolicy(ctx, "arn:aws:iam::1:policy/p"))
	assert.NoError(t, client.DeleteRole(ctx, "r"))
}

func TestDeleteRole_DetachesRemainingPolicies(t *testing.T) {
	t.Parallel()

	rec := &recorder{respond: func(action string, _ map[string]string) (int, string) {
		switch action {
		case "ListAttachedRolePolicies":
			return http.StatusOK, `<ListAttachedRolePoliciesResponse><ListAttachedRolePoliciesResult>
<IsTruncated>false</IsTruncated><AttachedPolicies>
<member><PolicyName>p1</PolicyName><PolicyArn>arn:aws:iam::1:policy/p1</PolicyArn></member>
</AttachedPolicies></ListAttachedRolePoliciesResult></ListAttachedRolePoliciesResponse>`
		case "DetachRolePolicy":
			return http.StatusOK, `<DetachRolePolicyResponse></DetachRolePolicyResponse>`
		case "DeleteRole":
			return http.StatusOK, `<DeleteRoleResponse></DeleteRoleResponse>`
		}
		return http.StatusBadRequest, errorResponse("InvalidAction")
	}}
	client := testClient(t, rec)

	require.NoError(t, client.DeleteRole(context.Background(), "kb-role"))
	assert.Equal(t, []string{"ListAttachedRolePolicies", "DetachRolePolicy", "DeleteRole"}, rec.actions)
	assert.Equal(t, "arn:aws:iam::1:policy/p1", rec.forms[1]["PolicyArn"])
}

func TestDeleteRole_ConflictIsSurfaced(t *testing.T) {
	t.Parallel()

	rec := &recorder{respond: func(action string, _ map[string]string) (int, string) {
		if action == "ListAttachedRolePolicies" {
			return http.StatusOK, `<ListAttachedRolePoliciesResponse><ListAttachedRolePoliciesResult><IsTruncated>false</IsTruncated></ListAttachedRolePoliciesResult></ListAttachedRolePoliciesResponse>`
		}
		return http.StatusConflict, errorResponse("DeleteConflict")
	}}
	client := testClient(t, rec)

	err := client.DeleteRole(context.Background(), "kb-role")
	require.Error(t, err)
	assert.True(t, awserr.IsRetryable(err))
	assert.True(t, strings.HasPrefix(err.Error(), "failed to delete role"))
}
