package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "authkeeper.AuthService"

// Full method names.
const (
	MethodGetAuthConfig      = "/" + ServiceName + "/GetAuthConfig"
	MethodEmailSignup        = "/" + ServiceName + "/EmailSignup"
	MethodEmailLogin         = "/" + ServiceName + "/EmailLogin"
	MethodCreateVerification = "/" + ServiceName + "/CreateVerification"
	MethodResendVerification = "/" + ServiceName + "/ResendVerification"
	MethodCheckVerification  = "/" + ServiceName + "/CheckVerification"
	MethodOAuthLogin         = "/" + ServiceName + "/OAuthLogin"
	MethodRefresh            = "/" + ServiceName + "/Refresh"
	MethodLogout             = "/" + ServiceName + "/Logout"
)

// AuthServiceServer is implemented by the transport layer.
type AuthServiceServer interface {
	GetAuthConfig(context.Context, *GetAuthConfigRequest) (*GetAuthConfigResponse, error)
	EmailSignup(context.Context, *EmailSignupRequest) (*VerificationResponse, error)
	EmailLogin(context.Context, *EmailLoginRequest) (*TokenPair, error)
	CreateVerification(context.Context, *CreateVerificationRequest) (*VerificationResponse, error)
	ResendVerification(context.Context, *ResendVerificationRequest) (*ResendVerificationResponse, error)
	CheckVerification(context.Context, *CheckVerificationRequest) (*CheckVerificationResponse, error)
	OAuthLogin(context.Context, *OAuthLoginRequest) (*OAuthLoginResponse, error)
	Refresh(context.Context, *RefreshRequest) (*TokenPair, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

// unary adapts a typed method to a grpc.MethodDesc.
func unary[Req, Resp any](name string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuthServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuthServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetAuthConfig", AuthServiceServer.GetAuthConfig),
		unary("EmailSignup", AuthServiceServer.EmailSignup),
		unary("EmailLogin", AuthServiceServer.EmailLogin),
		unary("CreateVerification", AuthServiceServer.CreateVerification),
		unary("ResendVerification", AuthServiceServer.ResendVerification),
		unary("CheckVerification", AuthServiceServer.CheckVerification),
		unary("OAuthLogin", AuthServiceServer.OAuthLogin),
		unary("Refresh", AuthServiceServer.Refresh),
		unary("Logout", AuthServiceServer.Logout),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "authkeeper/auth",
}

// AuthServiceClient is the client API for AuthService.
type AuthServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) *AuthServiceClient {
	return &AuthServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthServiceClient) GetAuthConfig(ctx context.Context, in *GetAuthConfigRequest, opts ...grpc.CallOption) (*GetAuthConfigResponse, error) {
	return invoke[GetAuthConfigResponse](ctx, c.cc, MethodGetAuthConfig, in, opts...)
}

func (c *AuthServiceClient) EmailSignup(ctx context.Context, in *EmailSignupRequest, opts ...grpc.CallOption) (*VerificationResponse, error) {
	return invoke[VerificationResponse](ctx, c.cc, MethodEmailSignup, in, opts...)
}

func (c *AuthServiceClient) EmailLogin(ctx context.Context, in *EmailLoginRequest, opts ...grpc.CallOption) (*TokenPair, error) {
	return invoke[TokenPair](ctx, c.cc, MethodEmailLogin, in, opts...)
}

func (c *AuthServiceClient) CreateVerification(ctx context.Context, in *CreateVerificationRequest, opts ...grpc.CallOption) (*VerificationResponse, error) {
	return invoke[VerificationResponse](ctx, c.cc, MethodCreateVerification, in, opts...)
}

func (c *AuthServiceClient) ResendVerification(ctx context.Context, in *ResendVerificationRequest, opts ...grpc.CallOption) (*ResendVerificationResponse, error) {
	return invoke[ResendVerificationResponse](ctx, c.cc, MethodResendVerification, in, opts...)
}

func (c *AuthServiceClient) CheckVerification(ctx context.Context, in *CheckVerificationRequest, opts ...grpc.CallOption) (*CheckVerificationResponse, error) {
	return invoke[CheckVerificationResponse](ctx, c.cc, MethodCheckVerification, in, opts...)
}

func (c *AuthServiceClient) OAuthLogin(ctx context.Context, in *OAuthLoginRequest, opts ...grpc.CallOption) (*OAuthLoginResponse, error) {
	return invoke[OAuthLoginResponse](ctx, c.cc, MethodOAuthLogin, in, opts...)
}

func (c *AuthServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*TokenPair, error) {
	return invoke[TokenPair](ctx, c.cc, MethodRefresh, in, opts...)
}

func (c *AuthServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, MethodLogout, in, opts...)
}
