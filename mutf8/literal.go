package mutf8

// MustFromUTF8 converts a Go string literal into a validated Modified
// UTF-8 Str, panicking if the result is somehow invalid (which cannot
// happen for well-formed UTF-8 input; EncodeUTF8 always produces valid
// output). Go has no const-eval hook to run this at compile time the way
// original_source's mutf8! macro does, so call sites assign the result to
// a package-level var, which runs the conversion once at program init.
func MustFromUTF8(s string) *Str {
	b := EncodeUTF8(s)
	if err := Validate(b); err != nil {
		panic("mutf8: MustFromUTF8 produced invalid output: " + err.Error())
	}
	return &Str{b: b}
}

// Well-known attribute and keyword names, converted and validated once at
// program init.
var (
	AttrCode                                  = MustFromUTF8("Code")
	AttrConstantValue                         = MustFromUTF8("ConstantValue")
	AttrDeprecated                             = MustFromUTF8("Deprecated")
	AttrSynthetic                              = MustFromUTF8("Synthetic")
	AttrExceptions                             = MustFromUTF8("Exceptions")
	AttrInnerClasses                           = MustFromUTF8("InnerClasses")
	AttrEnclosingMethod                        = MustFromUTF8("EnclosingMethod")
	AttrNestHost                               = MustFromUTF8("NestHost")
	AttrNestMembers                            = MustFromUTF8("NestMembers")
	AttrBootstrapMethods                       = MustFromUTF8("BootstrapMethods")
	AttrLineNumberTable                        = MustFromUTF8("LineNumberTable")
	AttrLocalVariableTable                     = MustFromUTF8("LocalVariableTable")
	AttrLocalVariableTypeTable                 = MustFromUTF8("LocalVariableTypeTable")
	AttrSignature                              = MustFromUTF8("Signature")
	AttrSourceFile                             = MustFromUTF8("SourceFile")
	AttrSourceDebugExtension                   = MustFromUTF8("SourceDebugExtension")
	AttrStackMapTable                          = MustFromUTF8("StackMapTable")
	AttrModuleMainClass                        = MustFromUTF8("ModuleMainClass")
	AttrModulePackages                         = MustFromUTF8("ModulePackages")
	AttrRuntimeVisibleAnnotations               = MustFromUTF8("RuntimeVisibleAnnotations")
	AttrRuntimeInvisibleAnnotations             = MustFromUTF8("RuntimeInvisibleAnnotations")
	AttrRuntimeVisibleParameterAnnotations      = MustFromUTF8("RuntimeVisibleParameterAnnotations")
	AttrRuntimeInvisibleParameterAnnotations    = MustFromUTF8("RuntimeInvisibleParameterAnnotations")
	AttrRuntimeVisibleTypeAnnotations           = MustFromUTF8("RuntimeVisibleTypeAnnotations")
	AttrRuntimeInvisibleTypeAnnotations         = MustFromUTF8("RuntimeInvisibleTypeAnnotations")
	AttrAnnotationDefault                      = MustFromUTF8("AnnotationDefault")
)
