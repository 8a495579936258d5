package errors

import "fmt"

// NewBindingConflictError reports two bindings of one kind declared together on a member
func NewBindingConflictError(component, member, kind string) *BaseError {
	return Newf(BindingConflictErrorCode, "conflicting interceptor bindings found on %s", component).
		WithContext("component", component).
		WithContext("member", member).
		WithContext("binding", kind).
		WithSuggestion(fmt.Sprintf("Declare @%s at most once on %s; a member binding already overrides the class binding", kind, member))
}

// NewFinalClassWithInterceptorsError reports interception requested on a final component type
func NewFinalClassWithInterceptorsError(component string) *BaseError {
	return Newf(FinalClassWithInterceptorsErrorCode, "component class %s with interceptors must not be final", component).
		WithContext("component", component).
		WithSuggestion("Remove the //weave::final marker or remove the interceptors from the component")
}

// NewNonProxyableConstructorError reports a private constructor on a component that needs an interception proxy
func NewNonProxyableConstructorError(component, constructor string) *BaseError {
	return Newf(NonProxyableConstructorErrorCode,
		"component %s is not proxyable because constructor %s is private", component, constructor).
		WithContext("component", component).
		WithContext("constructor", constructor).
		WithSuggestion(fmt.Sprintf("Export the constructor of %s", component))
}

// NewFinalMethodWithInterceptorsError reports interception of a final business method
func NewFinalMethodWithInterceptorsError(component, method, interceptor string) *BaseError {
	return Newf(FinalMethodWithInterceptorsErrorCode,
		"intercepted method %s.%s must not be final (interceptor %s)", component, method, interceptor).
		WithContext("component", component).
		WithContext("method", method).
		WithContext("interceptor", interceptor).
		WithSuggestion(fmt.Sprintf("Remove the //weave::final marker from %s", method))
}

// NewUnknownInterceptorError reports a legacy interceptor class that was never declared
func NewUnknownInterceptorError(component, interceptor string) *BaseError {
	return Newf(UnknownInterceptorErrorCode, "interceptor class %s declared on %s is not known", interceptor, component).
		WithContext("component", component).
		WithContext("interceptor", interceptor).
		WithSuggestion(fmt.Sprintf("Annotate %s with //weave::interceptor", interceptor))
}

// WrapDeploymentError attaches the component identity to a failure raised while initializing it
func WrapDeploymentError(component string, cause error) *BaseError {
	return Wrapf(DeploymentErrorCode, cause, "failed to initialize interception model for %s", component).
		WithContext("component", component)
}
